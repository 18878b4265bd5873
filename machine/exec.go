package machine

import (
	"io"
	"math/bits"
	"strconv"

	"otto/inst"
)

// execute runs one decoded instruction. next is the address of the
// instruction that follows in memory; CALL/RST push it before jumping.
func (m *Machine) execute(i inst.Instruction, next inst.Address) executionResult {
	switch i.Op {
	case inst.OpNop:
		return resRunning

	// data transfer
	case inst.OpMov:
		m.setRegister(i.Dst, m.Register(i.Src))
		return resRunning
	case inst.OpMvi:
		m.setRegister(i.Dst, i.Imm.Low)
		return resRunning
	case inst.OpLxi:
		m.setPair(i.Pair, i.Imm)
		return resRunning
	case inst.OpLda:
		m.reg.A = m.mem.Read8(i.Imm.Value())
		return resRunning
	case inst.OpSta:
		m.mem.Write8(i.Imm.Value(), m.reg.A)
		return resRunning
	case inst.OpLhld:
		value, ok := m.mem.Read16(i.Imm.Value())
		if !ok {
			return resMemoryOverflow
		}
		m.setPair(inst.HL, value)
		return resRunning
	case inst.OpShld:
		if !m.mem.Write16(i.Imm.Value(), m.Pair(inst.HL)) {
			return resMemoryOverflow
		}
		return resRunning
	case inst.OpLdax:
		m.reg.A = m.mem.Read8(m.Pair(i.Ind.Pair()).Value())
		return resRunning
	case inst.OpStax:
		m.mem.Write8(m.Pair(i.Ind.Pair()).Value(), m.reg.A)
		return resRunning
	case inst.OpXchg:
		hl, de := m.Pair(inst.HL), m.Pair(inst.DE)
		m.setPair(inst.HL, de)
		m.setPair(inst.DE, hl)
		return resRunning

	// arithmetic
	case inst.OpAdd:
		m.execAdd(m.Register(i.Src), 0)
		return resRunning
	case inst.OpAdi:
		m.execAdd(i.Imm.Low, 0)
		return resRunning
	case inst.OpAdc:
		m.execAdd(m.Register(i.Src), m.carryBit())
		return resRunning
	case inst.OpAci:
		m.execAdd(i.Imm.Low, m.carryBit())
		return resRunning
	case inst.OpSub:
		m.reg.A = m.execSub(m.Register(i.Src), 0)
		return resRunning
	case inst.OpSui:
		m.reg.A = m.execSub(i.Imm.Low, 0)
		return resRunning
	case inst.OpSbb:
		m.reg.A = m.execSub(m.Register(i.Src), m.carryBit())
		return resRunning
	case inst.OpSbi:
		m.reg.A = m.execSub(i.Imm.Low, m.carryBit())
		return resRunning
	case inst.OpInr:
		value := m.Register(i.Dst)
		result := value + 1
		m.flags.AuxCarry = value&0x0f == 0x0f
		m.setZSP(result)
		m.setRegister(i.Dst, result)
		return resRunning
	case inst.OpDcr:
		value := m.Register(i.Dst)
		result := value - 1
		m.flags.AuxCarry = value&0x0f != 0
		m.setZSP(result)
		m.setRegister(i.Dst, result)
		return resRunning
	case inst.OpInx:
		m.setPair(i.Pair, inst.U16(m.Pair(i.Pair).Value()+1))
		return resRunning
	case inst.OpDcx:
		m.setPair(i.Pair, inst.U16(m.Pair(i.Pair).Value()-1))
		return resRunning
	case inst.OpDad:
		sum := uint32(m.Pair(inst.HL).Value()) + uint32(m.Pair(i.Pair).Value())
		m.flags.Carry = sum>>16&1 == 1
		m.setPair(inst.HL, inst.U16(uint16(sum)))
		return resRunning
	case inst.OpDaa:
		m.execDaa()
		return resRunning

	// logical
	case inst.OpAna:
		m.execLogic(m.reg.A & m.Register(i.Src))
		return resRunning
	case inst.OpAni:
		m.execLogic(m.reg.A & i.Imm.Low)
		return resRunning
	case inst.OpXra:
		m.execLogic(m.reg.A ^ m.Register(i.Src))
		return resRunning
	case inst.OpXri:
		m.execLogic(m.reg.A ^ i.Imm.Low)
		return resRunning
	case inst.OpOra:
		m.execLogic(m.reg.A | m.Register(i.Src))
		return resRunning
	case inst.OpOri:
		m.execLogic(m.reg.A | i.Imm.Low)
		return resRunning
	case inst.OpCmp:
		m.execSub(m.Register(i.Src), 0) // flags only, A untouched
		return resRunning
	case inst.OpCpi:
		m.execSub(i.Imm.Low, 0)
		return resRunning
	case inst.OpRlc:
		bit7 := m.reg.A >> 7
		m.reg.A = m.reg.A<<1 | bit7
		m.flags.Carry = bit7 == 1
		return resRunning
	case inst.OpRrc:
		bit0 := m.reg.A & 1
		m.reg.A = m.reg.A>>1 | bit0<<7
		m.flags.Carry = bit0 == 1
		return resRunning
	case inst.OpRal:
		bit7 := m.reg.A >> 7
		m.reg.A = m.reg.A<<1 | m.carryBit()
		m.flags.Carry = bit7 == 1
		return resRunning
	case inst.OpRar:
		bit0 := m.reg.A & 1
		m.reg.A = m.reg.A>>1 | m.carryBit()<<7
		m.flags.Carry = bit0 == 1
		return resRunning
	case inst.OpCma:
		m.reg.A = ^m.reg.A
		return resRunning
	case inst.OpCmc:
		m.flags.Carry = !m.flags.Carry
		return resRunning
	case inst.OpStc:
		m.flags.Carry = true
		return resRunning

	// branch
	case inst.OpJmp:
		m.pc = i.Imm.Value()
		return resControlTransfer
	case inst.OpJcc:
		if m.condition(i.Cond) {
			m.pc = i.Imm.Value()
			return resControlTransfer
		}
		return resRunning
	case inst.OpCall:
		return m.execCall(i.Imm.Value(), next)
	case inst.OpCcc:
		if m.condition(i.Cond) {
			return m.execCall(i.Imm.Value(), next)
		}
		return resRunning
	case inst.OpRet:
		return m.execRet()
	case inst.OpRcc:
		if m.condition(i.Cond) {
			return m.execRet()
		}
		return resRunning
	case inst.OpRst:
		return m.execCall(i.Rst.Target(), next)
	case inst.OpPchl:
		m.pc = m.Pair(inst.HL).Value()
		return resControlTransfer

	// stack, I/O, machine control
	case inst.OpPush:
		var value inst.Data16
		if pair, ok := i.PP.Pair(); ok {
			value = m.Pair(pair)
		} else {
			value = m.statusWord()
		}
		if !m.stackPush(value) {
			return resStackOverflow
		}
		return resRunning
	case inst.OpPop:
		value, ok := m.stackPop()
		if !ok {
			return resStackUnderflow
		}
		if pair, ok := i.PP.Pair(); ok {
			m.setPair(pair, value)
		} else {
			m.setStatusWord(value)
		}
		return resRunning
	case inst.OpXthl:
		sp := m.reg.SP
		top, ok := m.mem.Read16(sp)
		if !ok {
			return resMemoryOverflow
		}
		m.mem.Write16(sp, m.Pair(inst.HL))
		m.setPair(inst.HL, top)
		return resRunning
	case inst.OpSphl:
		m.reg.SP = m.Pair(inst.HL).Value()
		return resRunning
	case inst.OpIn:
		return m.execIn(i.Port)
	case inst.OpOut:
		m.execOut(i.Port)
		return resRunning
	case inst.OpEi, inst.OpDi:
		// interrupts are not modeled
		return resRunning
	case inst.OpHlt:
		return resHalt
	}
	return resRunning
}

func (m *Machine) carryBit() inst.Data8 {
	if m.flags.Carry {
		return 1
	}
	return 0
}

func (m *Machine) condition(c inst.Condition) bool {
	switch c {
	case inst.NoZero:
		return !m.flags.Zero
	case inst.Zero:
		return m.flags.Zero
	case inst.NoCarry:
		return !m.flags.Carry
	case inst.Carry:
		return m.flags.Carry
	case inst.ParityOdd:
		return !m.flags.Parity
	case inst.ParityEven:
		return m.flags.Parity
	case inst.Positive:
		return !m.flags.Sign
	}
	return m.flags.Sign // Minus
}

// setZSP derives the Zero, Sign and Parity flags from a result byte.
func (m *Machine) setZSP(result inst.Data8) {
	m.flags.Zero = result == 0
	m.flags.Sign = result>>7&1 == 1
	m.flags.Parity = bits.OnesCount8(result)%2 == 0
}

// execAdd performs A <- A + value + carryIn and sets all five flags.
func (m *Machine) execAdd(value, carryIn inst.Data8) {
	a := m.reg.A
	sum := uint16(a) + uint16(value) + uint16(carryIn)
	result := inst.Data8(sum)

	m.flags.Carry = sum>>8&1 == 1
	m.flags.AuxCarry = (a&0x0f+value&0x0f+carryIn)&0x10 != 0
	m.setZSP(result)
	m.reg.A = result
}

// execSub computes A - value - borrowIn as the two's-complement addition
// A + ^value + (1 - borrowIn), sets all five flags, and returns the result
// without writing A (CMP/CPI discard it). Carry is the borrow: set when
// value + borrowIn exceeds A, i.e. when the internal addition produced no
// carry out of bit 7.
func (m *Machine) execSub(value, borrowIn inst.Data8) inst.Data8 {
	a := m.reg.A
	comp := ^value
	sum := uint16(a) + uint16(comp) + uint16(1-borrowIn)
	result := inst.Data8(sum)

	m.flags.Carry = sum>>8&1 == 0
	m.flags.AuxCarry = (a&0x0f+comp&0x0f+(1-borrowIn))&0x10 != 0
	m.setZSP(result)
	return result
}

// execLogic writes a logical result to A; logical operations clear both
// Carry and AuxCarry.
func (m *Machine) execLogic(result inst.Data8) {
	m.flags.Carry = false
	m.flags.AuxCarry = false
	m.setZSP(result)
	m.reg.A = result
}

// execDaa adjusts A to two packed BCD digits: add 6 to the low nibble if it
// exceeds 9 or AC is set, then 0x60 to the high if it exceeds 9 or CY is
// set. CY latches on a high-adjust overflow and is never cleared here.
func (m *Machine) execDaa() {
	a := m.reg.A

	ac := false
	if a&0x0f > 9 || m.flags.AuxCarry {
		ac = a&0x0f > 9
		a += 6
	}
	cy := m.flags.Carry
	if a>>4 > 9 || cy {
		sum := uint16(a) + 0x60
		if sum > 0xff {
			cy = true
		}
		a = inst.Data8(sum)
	}

	m.flags.AuxCarry = ac
	m.flags.Carry = cy
	m.setZSP(a)
	m.reg.A = a
}

// execCall pushes the return address, then jumps.
func (m *Machine) execCall(target, ret inst.Address) executionResult {
	if !m.stackPush(inst.U16(ret)) {
		return resStackOverflow
	}
	m.pc = target
	return resControlTransfer
}

func (m *Machine) execRet() executionResult {
	addr, ok := m.stackPop()
	if !ok {
		return resStackUnderflow
	}
	m.pc = addr.Value()
	return resControlTransfer
}

// The synthetic port map: port 0 reads one byte from the machine's stdin
// source and writes raw bytes out; ports 1 and 2 render A and HL as decimal
// text. Reads from any other port yield zero, writes are dropped.

func (m *Machine) execIn(port inst.Port) executionResult {
	if port != 0 {
		m.reg.A = 0
		return resRunning
	}
	var buf [1]byte
	if _, err := io.ReadFull(m.stdin, buf[:]); err != nil {
		return resHalt // EOF
	}
	m.reg.A = buf[0]
	return resRunning
}

func (m *Machine) execOut(port inst.Port) {
	switch port {
	case 0:
		m.stdout = append(m.stdout, m.reg.A)
	case 1:
		m.stdout = strconv.AppendUint(m.stdout, uint64(m.reg.A), 10)
	case 2:
		m.stdout = strconv.AppendUint(m.stdout, uint64(m.Pair(inst.HL).Value()), 10)
	}
}
