package inst

import "fmt"

func (r Register) String() string {
	switch r {
	case B:
		return "B"
	case C:
		return "C"
	case D:
		return "D"
	case E:
		return "E"
	case H:
		return "H"
	case L:
		return "L"
	case M:
		return "M"
	case A:
		return "A"
	}
	return fmt.Sprintf("Register(%d)", byte(r))
}

func (p RegisterPair) String() string {
	switch p {
	case BC:
		return "BC"
	case DE:
		return "DE"
	case HL:
		return "HL"
	case SP:
		return "SP"
	}
	return fmt.Sprintf("RegisterPair(%d)", byte(p))
}

// operand renders a pair the way the assembler spells it: the first register
// of the pair, or SP.
func (p RegisterPair) operand() string {
	switch p {
	case BC:
		return "B"
	case DE:
		return "D"
	case HL:
		return "H"
	}
	return "SP"
}

func (p PairOrPSW) operand() string {
	if p == PushPSW {
		return "PSW"
	}
	return RegisterPair(p).operand()
}

// Suffix is the condition's mnemonic suffix, as in JNZ, CPE, RM.
func (c Condition) Suffix() string {
	switch c {
	case NoZero:
		return "NZ"
	case Zero:
		return "Z"
	case NoCarry:
		return "NC"
	case Carry:
		return "C"
	case ParityOdd:
		return "PO"
	case ParityEven:
		return "PE"
	case Positive:
		return "P"
	case Minus:
		return "M"
	}
	return "?"
}

func d8(v Data8) string    { return fmt.Sprintf("%02XH", v) }
func d16(v Data16) string  { return fmt.Sprintf("%04XH", v.Value()) }
func addr(v Data16) string { return d16(v) }

// String renders the instruction in assembler syntax.
func (i Instruction) String() string {
	switch i.Op {
	case OpNop:
		return "NOP"
	case OpMov:
		return fmt.Sprintf("MOV %s, %s", i.Dst, i.Src)
	case OpMvi:
		return fmt.Sprintf("MVI %s, %s", i.Dst, d8(i.Imm.Low))
	case OpLxi:
		return fmt.Sprintf("LXI %s, %s", i.Pair.operand(), d16(i.Imm))
	case OpLda:
		return "LDA " + addr(i.Imm)
	case OpSta:
		return "STA " + addr(i.Imm)
	case OpLhld:
		return "LHLD " + addr(i.Imm)
	case OpShld:
		return "SHLD " + addr(i.Imm)
	case OpLdax:
		return "LDAX " + i.Ind.Pair().operand()
	case OpStax:
		return "STAX " + i.Ind.Pair().operand()
	case OpXchg:
		return "XCHG"
	case OpAdd:
		return "ADD " + i.Src.String()
	case OpAdi:
		return "ADI " + d8(i.Imm.Low)
	case OpAdc:
		return "ADC " + i.Src.String()
	case OpAci:
		return "ACI " + d8(i.Imm.Low)
	case OpSub:
		return "SUB " + i.Src.String()
	case OpSui:
		return "SUI " + d8(i.Imm.Low)
	case OpSbb:
		return "SBB " + i.Src.String()
	case OpSbi:
		return "SBI " + d8(i.Imm.Low)
	case OpInr:
		return "INR " + i.Dst.String()
	case OpDcr:
		return "DCR " + i.Dst.String()
	case OpInx:
		return "INX " + i.Pair.operand()
	case OpDcx:
		return "DCX " + i.Pair.operand()
	case OpDad:
		return "DAD " + i.Pair.operand()
	case OpDaa:
		return "DAA"
	case OpAna:
		return "ANA " + i.Src.String()
	case OpAni:
		return "ANI " + d8(i.Imm.Low)
	case OpXra:
		return "XRA " + i.Src.String()
	case OpXri:
		return "XRI " + d8(i.Imm.Low)
	case OpOra:
		return "ORA " + i.Src.String()
	case OpOri:
		return "ORI " + d8(i.Imm.Low)
	case OpCmp:
		return "CMP " + i.Src.String()
	case OpCpi:
		return "CPI " + d8(i.Imm.Low)
	case OpRlc:
		return "RLC"
	case OpRrc:
		return "RRC"
	case OpRal:
		return "RAL"
	case OpRar:
		return "RAR"
	case OpCma:
		return "CMA"
	case OpCmc:
		return "CMC"
	case OpStc:
		return "STC"
	case OpJmp:
		return "JMP " + addr(i.Imm)
	case OpJcc:
		return "J" + i.Cond.Suffix() + " " + addr(i.Imm)
	case OpCall:
		return "CALL " + addr(i.Imm)
	case OpCcc:
		return "C" + i.Cond.Suffix() + " " + addr(i.Imm)
	case OpRet:
		return "RET"
	case OpRcc:
		return "R" + i.Cond.Suffix()
	case OpRst:
		return fmt.Sprintf("RST %d", byte(i.Rst))
	case OpPchl:
		return "PCHL"
	case OpPush:
		return "PUSH " + i.PP.operand()
	case OpPop:
		return "POP " + i.PP.operand()
	case OpXthl:
		return "XTHL"
	case OpSphl:
		return "SPHL"
	case OpIn:
		return "IN " + d8(i.Port)
	case OpOut:
		return "OUT " + d8(i.Port)
	case OpEi:
		return "EI"
	case OpDi:
		return "DI"
	case OpHlt:
		return "HLT"
	}
	return fmt.Sprintf("Op(%d)", byte(i.Op))
}
