package machine

import (
	"io"
	"os"

	"otto/coding"
	"otto/inst"
)

// HaltReason classifies why a machine stopped. Runtime faults are halt
// reasons, not errors: the executor is total.
type HaltReason int

const (
	HaltInstruction HaltReason = iota
	InvalidInstruction
	StackOverflow
	StackUnderflow
	MemoryOverflow
)

func (r HaltReason) String() string {
	switch r {
	case HaltInstruction:
		return "halt instruction"
	case InvalidInstruction:
		return "invalid instruction"
	case StackOverflow:
		return "stack overflow"
	case StackUnderflow:
		return "stack underflow"
	case MemoryOverflow:
		return "memory overflow"
	}
	return "unknown"
}

// executionResult is what one instruction reports back to the cycle loop.
// Only resRunning and resHalt get the post-step PC advance; control
// transfers assign PC themselves, and faults freeze it.
type executionResult int

const (
	resRunning executionResult = iota
	resControlTransfer
	resHalt
	resStackOverflow
	resStackUnderflow
	resMemoryOverflow
)

// Registers is the programmer-visible register file. PC lives on the
// Machine, not here.
type Registers struct {
	A, B, C, D, E, H, L inst.Data8
	SP                  inst.Address
}

// Flags is the five modeled condition flags.
type Flags struct {
	Carry    bool
	AuxCarry bool
	Sign     bool
	Zero     bool
	Parity   bool
}

// A Machine owns its memory, registers and flags; observers take read-only
// views and only the executor mutates. A machine is created running with
// everything zeroed, and once halted every further RunCycle is a no-op.
type Machine struct {
	mem    Memory
	reg    Registers
	flags  Flags
	pc     inst.Address
	halted bool
	reason HaltReason

	stdout []byte
	stdin  io.Reader // byte source for IN port 0
}

func New() *Machine {
	return &Machine{stdin: os.Stdin}
}

// SetStdin replaces the byte source used by IN port 0. The default is the
// process's standard input.
func (m *Machine) SetStdin(r io.Reader) { m.stdin = r }

func (m *Machine) Running() bool { return !m.halted }

// HaltReason returns why the machine halted; ok is false while it is still
// running.
func (m *Machine) HaltReason() (HaltReason, bool) { return m.reason, m.halted }

func (m *Machine) PC() inst.Address { return m.pc }

// Registers returns a snapshot of the register file.
func (m *Machine) Registers() Registers { return m.reg }

// Flags returns a snapshot of the condition flags.
func (m *Machine) Flags() Flags { return m.flags }

// Memory returns a read-only view of the memory image. Observers must not
// write through it.
func (m *Machine) Memory() *Memory { return &m.mem }

// Stdout is the buffer the synthetic output ports append to.
func (m *Machine) Stdout() []byte { return m.stdout }

// LoadImage copies an encoded program into memory at origin and points PC
// there. ok is false when the image does not fit.
func (m *Machine) LoadImage(image []byte, origin inst.Address) bool {
	if !m.mem.WriteSlice(origin, image) {
		return false
	}
	m.pc = origin
	return true
}

// Register reads an 8-bit register; M reads memory at the current HL.
func (m *Machine) Register(r inst.Register) inst.Data8 {
	switch r {
	case inst.B:
		return m.reg.B
	case inst.C:
		return m.reg.C
	case inst.D:
		return m.reg.D
	case inst.E:
		return m.reg.E
	case inst.H:
		return m.reg.H
	case inst.L:
		return m.reg.L
	case inst.M:
		return m.mem.Read8(m.Pair(inst.HL).Value())
	}
	return m.reg.A
}

func (m *Machine) setRegister(r inst.Register, value inst.Data8) {
	switch r {
	case inst.B:
		m.reg.B = value
	case inst.C:
		m.reg.C = value
	case inst.D:
		m.reg.D = value
	case inst.E:
		m.reg.E = value
	case inst.H:
		m.reg.H = value
	case inst.L:
		m.reg.L = value
	case inst.M:
		m.mem.Write8(m.Pair(inst.HL).Value(), value)
	case inst.A:
		m.reg.A = value
	}
}

// Pair reads a 16-bit register pair; the first register holds the high byte.
func (m *Machine) Pair(p inst.RegisterPair) inst.Data16 {
	switch p {
	case inst.BC:
		return inst.Data16{Low: m.reg.C, High: m.reg.B}
	case inst.DE:
		return inst.Data16{Low: m.reg.E, High: m.reg.D}
	case inst.HL:
		return inst.Data16{Low: m.reg.L, High: m.reg.H}
	}
	return inst.U16(m.reg.SP)
}

func (m *Machine) setPair(p inst.RegisterPair, value inst.Data16) {
	switch p {
	case inst.BC:
		m.reg.C, m.reg.B = value.Low, value.High
	case inst.DE:
		m.reg.E, m.reg.D = value.Low, value.High
	case inst.HL:
		m.reg.L, m.reg.H = value.Low, value.High
	case inst.SP:
		m.reg.SP = value.Value()
	}
}

// statusWord packs A and the flags into the PSW. The flag byte reads
// S Z 0 AC 0 P 1 CY from bit 7 down to bit 0.
func (m *Machine) statusWord() inst.Data16 {
	var low inst.Data8 = 1 << 1
	if m.flags.Carry {
		low |= 1 << 0
	}
	if m.flags.Parity {
		low |= 1 << 2
	}
	if m.flags.AuxCarry {
		low |= 1 << 4
	}
	if m.flags.Zero {
		low |= 1 << 6
	}
	if m.flags.Sign {
		low |= 1 << 7
	}
	return inst.Data16{Low: low, High: m.reg.A}
}

// setStatusWord restores A and the five modeled flags from a popped PSW;
// the unmodeled bit positions are ignored.
func (m *Machine) setStatusWord(word inst.Data16) {
	m.flags.Carry = word.Low&(1<<0) != 0
	m.flags.Parity = word.Low&(1<<2) != 0
	m.flags.AuxCarry = word.Low&(1<<4) != 0
	m.flags.Zero = word.Low&(1<<6) != 0
	m.flags.Sign = word.Low&(1<<7) != 0
	m.reg.A = word.High
}

// stackPush writes the word below SP and moves SP down. ok is false when SP
// has no room for two more bytes.
func (m *Machine) stackPush(value inst.Data16) bool {
	if m.reg.SP < 2 {
		return false
	}
	newSP := m.reg.SP - 2
	m.mem.Write16(newSP, value)
	m.reg.SP = newSP
	return true
}

// stackPop reads the word at SP and moves SP up. ok is false when the read
// or the SP increment would run past the top of memory.
func (m *Machine) stackPop() (inst.Data16, bool) {
	value, ok := m.mem.Read16(m.reg.SP)
	if !ok {
		return inst.Data16{}, false
	}
	if int(m.reg.SP)+2 > 0xffff {
		return inst.Data16{}, false
	}
	m.reg.SP += 2
	return value, true
}

// Load decodes the instruction at PC without executing it.
func (m *Machine) Load() (inst.Instruction, bool) {
	i, _, ok := coding.DecodeBytes(m.mem[m.pc:])
	return i, ok
}

// RunCycle loads, decodes and executes one instruction, then advances state.
// A no-op once the machine has halted.
func (m *Machine) RunCycle() {
	if m.halted {
		return
	}

	i, size, ok := coding.DecodeBytes(m.mem[m.pc:])
	if !ok {
		m.halt(InvalidInstruction)
		return
	}

	next := m.pc + inst.Address(size)
	switch m.execute(i, next) {
	case resRunning:
		m.pc = next
	case resControlTransfer:
		// the instruction assigned PC itself
	case resHalt:
		m.pc = next
		m.halt(HaltInstruction)
	case resStackOverflow:
		m.halt(StackOverflow)
	case resStackUnderflow:
		m.halt(StackUnderflow)
	case resMemoryOverflow:
		m.halt(MemoryOverflow)
	}
}

func (m *Machine) halt(reason HaltReason) {
	m.halted = true
	m.reason = reason
}
