package machine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"otto/asm"
	"otto/coding"
	"otto/inst"
)

// load encodes the instructions into memory at origin and points PC there.
func load(t *testing.T, m *Machine, origin inst.Address, instructions ...inst.Instruction) {
	t.Helper()
	var image []byte
	for _, i := range instructions {
		image = coding.Append(image, i)
	}
	assert.True(t, m.LoadImage(image, origin))
}

func TestNewMachineZeroed(t *testing.T) {
	m := New()
	assert.True(t, m.Running())
	assert.Equal(t, Registers{}, m.Registers())
	assert.Equal(t, Flags{}, m.Flags())
	assert.Equal(t, inst.Address(0), m.PC())
}

func TestMovAdvancesPC(t *testing.T) {
	// a single MOV advances PC by one
	m := New()
	load(t, m, 0x10, inst.Mov(inst.A, inst.B))
	assert.Equal(t, inst.Address(0x10), m.PC())

	m.RunCycle()
	assert.Equal(t, inst.Address(0x11), m.PC())
	assert.Equal(t, inst.Data8(0), m.Registers().A)
	assert.True(t, m.Running())
}

func TestMovCopies(t *testing.T) {
	m := New()
	m.reg.B = 0x42
	load(t, m, 0, inst.Mov(inst.A, inst.B))
	m.RunCycle()
	assert.Equal(t, inst.Data8(0x42), m.reg.A)
	assert.Equal(t, inst.Data8(0x42), m.reg.B)
}

func TestMemoryRegisterM(t *testing.T) {
	m := New()
	m.reg.H, m.reg.L = 0x20, 0x00
	m.mem.Write8(0x2000, 0x99)
	load(t, m, 0, inst.Mov(inst.A, inst.M), inst.Mvi(inst.M, 0x77))
	m.RunCycle()
	assert.Equal(t, inst.Data8(0x99), m.reg.A)
	m.RunCycle()
	assert.Equal(t, inst.Data8(0x77), m.mem.Read8(0x2000))
}

func TestAdiFlags(t *testing.T) {
	// 0xFF + 1 wraps to zero with both carries out
	m := New()
	m.reg.A = 0xff
	load(t, m, 0, inst.Adi(1))
	m.RunCycle()

	assert.Equal(t, inst.Data8(0), m.reg.A)
	assert.Equal(t, Flags{Carry: true, AuxCarry: true, Zero: true, Parity: true}, m.Flags())
}

func TestAdcUsesCarry(t *testing.T) {
	m := New()
	m.reg.A = 0x10
	m.reg.B = 0x01
	m.flags.Carry = true
	load(t, m, 0, inst.Adc(inst.B))
	m.RunCycle()
	assert.Equal(t, inst.Data8(0x12), m.reg.A)
	assert.False(t, m.flags.Carry)
}

func TestSubBorrow(t *testing.T) {
	// after SUB/SBB/CMP, CY is set when subtrahend > minuend
	m := New()
	m.reg.A = 0x03
	m.reg.B = 0x05
	load(t, m, 0, inst.Sub(inst.B))
	m.RunCycle()
	assert.Equal(t, inst.Data8(0xfe), m.reg.A)
	assert.True(t, m.flags.Carry)
	assert.True(t, m.flags.Sign)
}

func TestSubSelfClearsBorrow(t *testing.T) {
	m := New()
	m.reg.A = 0x3e
	load(t, m, 0, inst.Sub(inst.A))
	m.RunCycle()
	assert.Equal(t, inst.Data8(0), m.reg.A)
	assert.True(t, m.flags.Zero)
	assert.False(t, m.flags.Carry)
	assert.True(t, m.flags.AuxCarry)
}

func TestSbbWithBorrowIn(t *testing.T) {
	m := New()
	m.reg.A = 0x05
	m.reg.B = 0x03
	m.flags.Carry = true
	load(t, m, 0, inst.Sbb(inst.B))
	m.RunCycle()
	assert.Equal(t, inst.Data8(0x01), m.reg.A)
	assert.False(t, m.flags.Carry)
}

func TestCmpPreservesA(t *testing.T) {
	// CMP flags must match SUB on the same operands, with A untouched
	run := func(i inst.Instruction) (*Machine, Flags) {
		m := New()
		m.reg.A = 0x0a
		m.reg.E = 0x05
		load(t, m, 0, i)
		m.RunCycle()
		return m, m.Flags()
	}

	sub, subFlags := run(inst.Sub(inst.E))
	cmp, cmpFlags := run(inst.Cmp(inst.E))
	assert.Equal(t, subFlags, cmpFlags)
	assert.Equal(t, inst.Data8(0x05), sub.reg.A)
	assert.Equal(t, inst.Data8(0x0a), cmp.reg.A)
}

func TestInrDcrPreserveCarry(t *testing.T) {
	m := New()
	m.flags.Carry = true
	m.reg.B = 0xff
	load(t, m, 0, inst.Inr(inst.B), inst.Dcr(inst.B))
	m.RunCycle()
	assert.Equal(t, inst.Data8(0), m.reg.B)
	assert.True(t, m.flags.Zero)
	assert.True(t, m.flags.AuxCarry)
	assert.True(t, m.flags.Carry, "INR must not touch CY")

	m.RunCycle()
	assert.Equal(t, inst.Data8(0xff), m.reg.B)
	assert.True(t, m.flags.Carry, "DCR must not touch CY")
	assert.False(t, m.flags.AuxCarry)
}

func TestLogicClearsCarryAndAux(t *testing.T) {
	m := New()
	m.reg.A = 0xfc
	m.reg.B = 0x0f
	m.flags.Carry = true
	m.flags.AuxCarry = true
	load(t, m, 0, inst.Ana(inst.B))
	m.RunCycle()
	assert.Equal(t, inst.Data8(0x0c), m.reg.A)
	assert.False(t, m.flags.Carry)
	assert.False(t, m.flags.AuxCarry)
	assert.False(t, m.flags.Zero)
}

func TestXraSelfZeroes(t *testing.T) {
	m := New()
	m.reg.A = 0x5a
	load(t, m, 0, inst.Xra(inst.A))
	m.RunCycle()
	assert.Equal(t, inst.Data8(0), m.reg.A)
	assert.True(t, m.flags.Zero)
	assert.True(t, m.flags.Parity)
}

func TestRotates(t *testing.T) {
	m := New()
	m.reg.A = 0b1000_0001
	load(t, m, 0, inst.Rlc())
	m.RunCycle()
	assert.Equal(t, inst.Data8(0b0000_0011), m.reg.A)
	assert.True(t, m.flags.Carry)

	m = New()
	m.reg.A = 0b1000_0001
	load(t, m, 0, inst.Rrc())
	m.RunCycle()
	assert.Equal(t, inst.Data8(0b1100_0000), m.reg.A)
	assert.True(t, m.flags.Carry)

	// RAL/RAR rotate through the carry
	m = New()
	m.reg.A = 0b1000_0000
	load(t, m, 0, inst.Ral())
	m.RunCycle()
	assert.Equal(t, inst.Data8(0), m.reg.A)
	assert.True(t, m.flags.Carry)

	m = New()
	m.reg.A = 0
	m.flags.Carry = true
	load(t, m, 0, inst.Rar())
	m.RunCycle()
	assert.Equal(t, inst.Data8(0b1000_0000), m.reg.A)
	assert.False(t, m.flags.Carry)
}

func TestDaa(t *testing.T) {
	// 0x9B adjusts to 0x01 with both carries set (manual's worked example)
	m := New()
	m.reg.A = 0x9b
	load(t, m, 0, inst.Daa())
	m.RunCycle()
	assert.Equal(t, inst.Data8(0x01), m.reg.A)
	assert.True(t, m.flags.Carry)
	assert.True(t, m.flags.AuxCarry)

	// BCD add 15 + 27 = 42: 0x15 + 0x27 = 0x3C, DAA -> 0x42
	m = New()
	m.reg.A = 0x15
	load(t, m, 0, inst.Adi(0x27), inst.Daa())
	m.RunCycle()
	m.RunCycle()
	assert.Equal(t, inst.Data8(0x42), m.reg.A)
	assert.False(t, m.flags.Carry)

	// no adjustment needed
	m = New()
	m.reg.A = 0x42
	load(t, m, 0, inst.Daa())
	m.RunCycle()
	assert.Equal(t, inst.Data8(0x42), m.reg.A)
	assert.False(t, m.flags.Carry)
	assert.False(t, m.flags.AuxCarry)
}

func TestDadCarryOnly(t *testing.T) {
	m := New()
	m.setPair(inst.HL, inst.U16(0xf000))
	m.setPair(inst.BC, inst.U16(0x2000))
	m.flags.Zero = true
	load(t, m, 0, inst.Dad(inst.BC))
	m.RunCycle()
	assert.Equal(t, uint16(0x1000), m.Pair(inst.HL).Value())
	assert.True(t, m.flags.Carry)
	assert.True(t, m.flags.Zero, "DAD affects only CY")
}

func TestInxDcxNoFlags(t *testing.T) {
	m := New()
	m.setPair(inst.BC, inst.U16(0xffff))
	load(t, m, 0, inst.Inx(inst.BC))
	m.RunCycle()
	assert.Equal(t, uint16(0), m.Pair(inst.BC).Value())
	assert.Equal(t, Flags{}, m.Flags())
}

func TestStackRoundTrip(t *testing.T) {
	// PUSH B / POP D moves BC into DE through the stack
	m := New()
	m.reg.SP = 0x2000
	m.setPair(inst.BC, inst.U16(0x1234))
	load(t, m, 0, inst.Push(inst.PushBC), inst.Pop(inst.PushDE))

	m.RunCycle()
	assert.Equal(t, inst.Address(0x1ffe), m.reg.SP)
	assert.Equal(t, inst.Data8(0x34), m.mem.Read8(0x1ffe))
	assert.Equal(t, inst.Data8(0x12), m.mem.Read8(0x1fff))

	m.RunCycle()
	assert.Equal(t, uint16(0x1234), m.Pair(inst.DE).Value())
	assert.Equal(t, inst.Address(0x2000), m.reg.SP)
}

func TestPswRoundTrip(t *testing.T) {
	m := New()
	m.reg.SP = 0x2000
	m.reg.A = 0xa5
	m.flags = Flags{Carry: true, AuxCarry: true, Sign: true}
	load(t, m, 0, inst.Push(inst.PushPSW), inst.Pop(inst.PushPSW))

	m.RunCycle()
	// S Z 0 AC 0 P 1 CY = 1001_0011
	assert.Equal(t, inst.Data8(0b1001_0011), m.mem.Read8(0x1ffe))
	assert.Equal(t, inst.Data8(0xa5), m.mem.Read8(0x1fff))

	m.reg.A = 0
	m.flags = Flags{}
	m.RunCycle()
	assert.Equal(t, inst.Data8(0xa5), m.reg.A)
	assert.Equal(t, Flags{Carry: true, AuxCarry: true, Sign: true}, m.Flags())
}

func TestCallRet(t *testing.T) {
	// CALL pushes the address of the following instruction
	m := New()
	m.reg.SP = 0x2000
	load(t, m, 0x20, inst.Ret())
	load(t, m, 0x10, inst.Call(0x20), inst.Nop()) // loaded last so PC starts at 0x10

	m.RunCycle()
	assert.Equal(t, inst.Address(0x20), m.PC())
	assert.Equal(t, inst.Address(0x1ffe), m.reg.SP)

	m.RunCycle()
	assert.Equal(t, inst.Address(0x13), m.PC(), "RET returns past the CALL")
	assert.Equal(t, inst.Address(0x2000), m.reg.SP)

	m.RunCycle() // the NOP
	assert.Equal(t, inst.Address(0x14), m.PC())
	assert.True(t, m.Running())
}

func TestRstPushesNext(t *testing.T) {
	m := New()
	m.reg.SP = 0x2000
	load(t, m, 0x100, inst.Rst(2))
	m.RunCycle()
	assert.Equal(t, inst.Address(0x10), m.PC())
	ret, ok := m.mem.Read16(0x1ffe)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x101), ret.Value())
}

func TestPchl(t *testing.T) {
	m := New()
	m.setPair(inst.HL, inst.U16(0x4242))
	load(t, m, 0, inst.Pchl())
	m.RunCycle()
	assert.Equal(t, inst.Address(0x4242), m.PC())
}

func TestXthl(t *testing.T) {
	m := New()
	m.reg.SP = 0x1000
	m.setPair(inst.HL, inst.U16(0xbeef))
	m.mem.Write16(0x1000, inst.U16(0x1234))
	load(t, m, 0, inst.Xthl())
	m.RunCycle()
	assert.Equal(t, uint16(0x1234), m.Pair(inst.HL).Value())
	top, _ := m.mem.Read16(0x1000)
	assert.Equal(t, uint16(0xbeef), top.Value())
	assert.Equal(t, inst.Address(0x1000), m.reg.SP)
}

func TestConditionals(t *testing.T) {
	// for every condition, exactly one of c and its complement transfers
	complement := map[inst.Condition]inst.Condition{
		inst.NoZero:    inst.Zero,
		inst.NoCarry:   inst.Carry,
		inst.ParityOdd: inst.ParityEven,
		inst.Positive:  inst.Minus,
	}
	for _, flags := range []Flags{
		{},
		{Zero: true},
		{Carry: true},
		{Parity: true},
		{Sign: true},
		{Carry: true, AuxCarry: true, Sign: true, Zero: true, Parity: true},
	} {
		for c, notC := range complement {
			m := New()
			m.flags = flags
			taken := m.condition(c)
			assert.NotEqual(t, taken, m.condition(notC), "%v vs %v under %+v", c, notC, flags)
		}
	}
}

func TestJccTakenAndNot(t *testing.T) {
	m := New()
	m.flags.Zero = true
	load(t, m, 0x10, inst.Jcc(inst.Zero, 0x40))
	m.RunCycle()
	assert.Equal(t, inst.Address(0x40), m.PC())

	m = New()
	load(t, m, 0x10, inst.Jcc(inst.Zero, 0x40))
	m.RunCycle()
	assert.Equal(t, inst.Address(0x13), m.PC(), "untaken Jcc falls through")
}

func TestRccUntakenAdvances(t *testing.T) {
	m := New()
	m.reg.SP = 0x2000
	load(t, m, 0x10, inst.Rcc(inst.Carry))
	m.RunCycle()
	assert.Equal(t, inst.Address(0x11), m.PC())
	assert.Equal(t, inst.Address(0x2000), m.reg.SP)
}

func TestHltAdvancesAndHalts(t *testing.T) {
	m := New()
	load(t, m, 0x10, inst.Hlt())
	m.RunCycle()
	assert.Equal(t, inst.Address(0x11), m.PC())
	reason, halted := m.HaltReason()
	assert.True(t, halted)
	assert.Equal(t, HaltInstruction, reason)
}

func TestInvalidInstructionHalts(t *testing.T) {
	m := New()
	assert.True(t, m.LoadImage([]byte{0x08}, 0x10)) // undocumented opcode
	m.RunCycle()
	reason, halted := m.HaltReason()
	assert.True(t, halted)
	assert.Equal(t, InvalidInstruction, reason)
	assert.Equal(t, inst.Address(0x10), m.PC(), "PC frozen on decode failure")
}

func TestHaltedMachineIsInert(t *testing.T) {
	m := New()
	load(t, m, 0, inst.Hlt(), inst.Mvi(inst.A, 0x42))
	m.RunCycle()
	before := m.Registers()
	pc := m.PC()
	for i := 0; i < 3; i++ {
		m.RunCycle()
	}
	assert.Equal(t, before, m.Registers())
	assert.Equal(t, pc, m.PC())
}

func TestStackOverflow(t *testing.T) {
	m := New()
	m.reg.SP = 1
	load(t, m, 0x10, inst.Push(inst.PushBC))
	m.RunCycle()
	reason, halted := m.HaltReason()
	assert.True(t, halted)
	assert.Equal(t, StackOverflow, reason)
	assert.Equal(t, inst.Address(0x10), m.PC())
}

func TestStackUnderflow(t *testing.T) {
	for _, sp := range []inst.Address{0xffff, 0xfffe} {
		m := New()
		m.reg.SP = sp
		load(t, m, 0x10, inst.Pop(inst.PushBC))
		m.RunCycle()
		reason, halted := m.HaltReason()
		assert.True(t, halted, "SP=%04x", sp)
		assert.Equal(t, StackUnderflow, reason)
	}

	m := New()
	m.reg.SP = 0xffff
	load(t, m, 0x10, inst.Ret())
	m.RunCycle()
	reason, _ := m.HaltReason()
	assert.Equal(t, StackUnderflow, reason)
}

func TestMemoryOverflow(t *testing.T) {
	m := New()
	load(t, m, 0x10, inst.Shld(0xffff))
	m.RunCycle()
	reason, halted := m.HaltReason()
	assert.True(t, halted)
	assert.Equal(t, MemoryOverflow, reason)

	m = New()
	load(t, m, 0x10, inst.Lhld(0xffff))
	m.RunCycle()
	reason, _ = m.HaltReason()
	assert.Equal(t, MemoryOverflow, reason)
}

func TestOutPorts(t *testing.T) {
	// port 0 emits raw bytes, ports 1 and 2 decimal text
	m := New()
	load(t, m, 0, inst.Mvi(inst.A, 0x41), inst.Out(0), inst.Out(1), inst.Hlt())
	for m.Running() {
		m.RunCycle()
	}
	assert.Equal(t, []byte("A65"), m.Stdout())

	m = New()
	m.setPair(inst.HL, inst.U16(1000))
	load(t, m, 0, inst.Out(2), inst.Out(7), inst.Hlt())
	for m.Running() {
		m.RunCycle()
	}
	assert.Equal(t, []byte("1000"), m.Stdout(), "unmapped OUT is a no-op")
}

func TestInPort(t *testing.T) {
	m := New()
	m.SetStdin(strings.NewReader("hi"))
	load(t, m, 0, inst.In(0), inst.Out(0), inst.In(0), inst.Out(0), inst.In(0))
	for m.Running() {
		m.RunCycle()
	}
	assert.Equal(t, []byte("hi"), m.Stdout())
	reason, halted := m.HaltReason()
	assert.True(t, halted, "EOF on port 0 halts")
	assert.Equal(t, HaltInstruction, reason)
}

func TestInUnmappedPortReadsZero(t *testing.T) {
	m := New()
	m.reg.A = 0x55
	load(t, m, 0, inst.In(3))
	m.RunCycle()
	assert.Equal(t, inst.Data8(0), m.reg.A)
	assert.True(t, m.Running())
}

func TestEndToEndLabeledJump(t *testing.T) {
	// source text through the assembler, codec and machine
	src := "ORG 10H\nMOV A, B\nJMP TEST\nTEST:   MOV B, A\nEND\n"
	prog, err := asm.Assemble(src)
	assert.NoError(t, err)
	assert.Equal(t, inst.Address(0x10), prog.Origin)

	m := New()
	m.reg.B = 7
	assert.True(t, m.LoadImage(prog.Bytes(), prog.Origin))

	m.RunCycle() // MOV A, B
	assert.Equal(t, inst.Address(0x11), m.PC())
	m.RunCycle() // JMP TEST
	assert.Equal(t, inst.Address(0x14), m.PC())

	next, ok := m.Load()
	assert.True(t, ok)
	assert.Equal(t, inst.Mov(inst.B, inst.A), next)
	m.RunCycle()
	assert.Equal(t, inst.Data8(7), m.reg.B)
}
