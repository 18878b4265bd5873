package asm

import (
	"errors"

	"otto/inst"
)

// args gives mnemonic builders typed access to a statement's operands, with
// label resolution for address positions.
type args struct {
	st     *statement
	labels labelTable
}

func (a *args) reg(k int) (inst.Register, *Error) {
	op := a.st.operands[k]
	switch op.text {
	case "B":
		return inst.B, nil
	case "C":
		return inst.C, nil
	case "D":
		return inst.D, nil
	case "E":
		return inst.E, nil
	case "H":
		return inst.H, nil
	case "L":
		return inst.L, nil
	case "M":
		return inst.M, nil
	case "A":
		return inst.A, nil
	}
	return 0, errAt(op.offset, ErrParse, "expected register, got %q", op.text)
}

func (a *args) pair(k int) (inst.RegisterPair, *Error) {
	op := a.st.operands[k]
	switch op.text {
	case "B":
		return inst.BC, nil
	case "D":
		return inst.DE, nil
	case "H":
		return inst.HL, nil
	case "SP":
		return inst.SP, nil
	}
	return 0, errAt(op.offset, ErrParse, "expected register pair, got %q", op.text)
}

func (a *args) ind(k int) (inst.PairIndirect, *Error) {
	op := a.st.operands[k]
	switch op.text {
	case "B":
		return inst.IndBC, nil
	case "D":
		return inst.IndDE, nil
	}
	return 0, errAt(op.offset, ErrParse, "expected B or D, got %q", op.text)
}

func (a *args) pp(k int) (inst.PairOrPSW, *Error) {
	op := a.st.operands[k]
	switch op.text {
	case "B":
		return inst.PushBC, nil
	case "D":
		return inst.PushDE, nil
	case "H":
		return inst.PushHL, nil
	case "PSW":
		return inst.PushPSW, nil
	}
	return 0, errAt(op.offset, ErrParse, "expected B, D, H or PSW, got %q", op.text)
}

func (a *args) d8(k int) (inst.Data8, *Error) {
	op := a.st.operands[k]
	v, err := parseNumber8(op.text)
	if err != nil {
		return 0, numberError(op, err)
	}
	return v, nil
}

func (a *args) rst(k int) (inst.RestartNumber, *Error) {
	op := a.st.operands[k]
	n, err := parseRestart(op.text)
	if err != nil {
		return 0, numberError(op, err)
	}
	return n, nil
}

// addr16 accepts either a literal number or a label naming an address.
// Anything that parses as a number is one; labels cannot start with a digit,
// so the two spaces only meet on hex-looking names like ABCDH, which read as
// numbers.
func (a *args) addr16(k int) (inst.Address, *Error) {
	op := a.st.operands[k]
	v, err := parseNumber(op.text)
	if err == nil {
		return inst.Address(v), nil
	}
	if errors.Is(err, errTooLarge) {
		return 0, numberError(op, err)
	}
	if isLabel(op.text) {
		if addr, ok := a.labels.get(op.text); ok {
			return addr, nil
		}
		return 0, errAt(op.offset, ErrUnknownLabel, "%s", op.text)
	}
	return 0, errAt(op.offset, ErrParse, "expected address or label, got %q", op.text)
}

func (a *args) d16(k int) (inst.Data16, *Error) {
	addr, err := a.addr16(k)
	if err != nil {
		return inst.Data16{}, err
	}
	return inst.U16(addr), nil
}

type opdef struct {
	size  int
	arity int
	build func(a *args) (inst.Instruction, *Error)
}

var mnemonics = map[string]opdef{}

func defNullary(name string, i inst.Instruction) {
	mnemonics[name] = opdef{size: 1, arity: 0,
		build: func(*args) (inst.Instruction, *Error) { return i, nil }}
}

func defSrc(name string, build func(inst.Register) inst.Instruction) {
	mnemonics[name] = opdef{size: 1, arity: 1,
		build: func(a *args) (inst.Instruction, *Error) {
			r, err := a.reg(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			return build(r), nil
		}}
}

func defImm8(name string, build func(inst.Data8) inst.Instruction) {
	mnemonics[name] = opdef{size: 2, arity: 1,
		build: func(a *args) (inst.Instruction, *Error) {
			v, err := a.d8(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			return build(v), nil
		}}
}

func defAddr(name string, build func(inst.Address) inst.Instruction) {
	mnemonics[name] = opdef{size: 3, arity: 1,
		build: func(a *args) (inst.Instruction, *Error) {
			addr, err := a.addr16(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			return build(addr), nil
		}}
}

func defPair(name string, build func(inst.RegisterPair) inst.Instruction) {
	mnemonics[name] = opdef{size: 1, arity: 1,
		build: func(a *args) (inst.Instruction, *Error) {
			p, err := a.pair(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			return build(p), nil
		}}
}

func defInd(name string, build func(inst.PairIndirect) inst.Instruction) {
	mnemonics[name] = opdef{size: 1, arity: 1,
		build: func(a *args) (inst.Instruction, *Error) {
			p, err := a.ind(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			return build(p), nil
		}}
}

func defPP(name string, build func(inst.PairOrPSW) inst.Instruction) {
	mnemonics[name] = opdef{size: 1, arity: 1,
		build: func(a *args) (inst.Instruction, *Error) {
			p, err := a.pp(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			return build(p), nil
		}}
}

func defPort(name string, build func(inst.Port) inst.Instruction) {
	mnemonics[name] = opdef{size: 2, arity: 1,
		build: func(a *args) (inst.Instruction, *Error) {
			v, err := a.d8(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			return build(v), nil
		}}
}

func init() {
	defNullary("NOP", inst.Nop())
	defNullary("XCHG", inst.Xchg())
	defNullary("DAA", inst.Daa())
	defNullary("RLC", inst.Rlc())
	defNullary("RRC", inst.Rrc())
	defNullary("RAL", inst.Ral())
	defNullary("RAR", inst.Rar())
	defNullary("CMA", inst.Cma())
	defNullary("CMC", inst.Cmc())
	defNullary("STC", inst.Stc())
	defNullary("RET", inst.Ret())
	defNullary("PCHL", inst.Pchl())
	defNullary("XTHL", inst.Xthl())
	defNullary("SPHL", inst.Sphl())
	defNullary("EI", inst.Ei())
	defNullary("DI", inst.Di())
	defNullary("HLT", inst.Hlt())

	mnemonics["MOV"] = opdef{size: 1, arity: 2,
		build: func(a *args) (inst.Instruction, *Error) {
			dst, err := a.reg(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			src, err := a.reg(1)
			if err != nil {
				return inst.Instruction{}, err
			}
			return inst.Mov(dst, src), nil
		}}
	mnemonics["MVI"] = opdef{size: 2, arity: 2,
		build: func(a *args) (inst.Instruction, *Error) {
			dst, err := a.reg(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			v, err := a.d8(1)
			if err != nil {
				return inst.Instruction{}, err
			}
			return inst.Mvi(dst, v), nil
		}}
	mnemonics["LXI"] = opdef{size: 3, arity: 2,
		build: func(a *args) (inst.Instruction, *Error) {
			p, err := a.pair(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			v, err := a.d16(1)
			if err != nil {
				return inst.Instruction{}, err
			}
			return inst.Lxi(p, v), nil
		}}

	defAddr("LDA", inst.Lda)
	defAddr("STA", inst.Sta)
	defAddr("LHLD", inst.Lhld)
	defAddr("SHLD", inst.Shld)
	defAddr("JMP", inst.Jmp)
	defAddr("CALL", inst.Call)

	defInd("LDAX", inst.Ldax)
	defInd("STAX", inst.Stax)

	defSrc("ADD", inst.Add)
	defSrc("ADC", inst.Adc)
	defSrc("SUB", inst.Sub)
	defSrc("SBB", inst.Sbb)
	defSrc("ANA", inst.Ana)
	defSrc("XRA", inst.Xra)
	defSrc("ORA", inst.Ora)
	defSrc("CMP", inst.Cmp)
	defSrc("INR", inst.Inr)
	defSrc("DCR", inst.Dcr)

	defImm8("ADI", inst.Adi)
	defImm8("ACI", inst.Aci)
	defImm8("SUI", inst.Sui)
	defImm8("SBI", inst.Sbi)
	defImm8("ANI", inst.Ani)
	defImm8("XRI", inst.Xri)
	defImm8("ORI", inst.Ori)
	defImm8("CPI", inst.Cpi)

	defPair("INX", inst.Inx)
	defPair("DCX", inst.Dcx)
	defPair("DAD", inst.Dad)

	defPP("PUSH", inst.Push)
	defPP("POP", inst.Pop)

	defPort("IN", inst.In)
	defPort("OUT", inst.Out)

	mnemonics["RST"] = opdef{size: 1, arity: 1,
		build: func(a *args) (inst.Instruction, *Error) {
			n, err := a.rst(0)
			if err != nil {
				return inst.Instruction{}, err
			}
			return inst.Rst(n), nil
		}}

	// the conditional families carry the condition in the mnemonic
	for c := inst.NoZero; c <= inst.Minus; c++ {
		cond := c
		defAddr("J"+cond.Suffix(), func(a inst.Address) inst.Instruction { return inst.Jcc(cond, a) })
		defAddr("C"+cond.Suffix(), func(a inst.Address) inst.Instruction { return inst.Ccc(cond, a) })
		defNullary("R"+cond.Suffix(), inst.Rcc(cond))
	}
}
