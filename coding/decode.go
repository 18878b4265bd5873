package coding

import (
	"otto/inst"
	"otto/mask"
)

// Decoding tries the opcode families in a fixed precedence order: nullary
// fixed opcodes, then register-in-opcode, register-pair, condition-indexed,
// immediate/direct, and finally I/O. The order only matters where masks
// overlap: 0x76 sits inside the MOV mask and must decode as HLT, and the
// fixed nullary opcodes must win over their mask-equivalent families.
var parsers = []func(*Reader) (inst.Instruction, bool){
	parseFixed,
	parseMov,
	parseAlu,
	parseInr,
	parseDcr,
	parseMvi,
	parseLxi,
	parseStax,
	parseLdax,
	parseInx,
	parseDcx,
	parseDad,
	parsePush,
	parsePop,
	parseRcc,
	parseJcc,
	parseCcc,
	parseRst,
	parseImm8,
	parseDirect16,
	parseIO,
}

// Decode reads one instruction from the stream. On success the reader has
// advanced by exactly the instruction's encoded length; on failure (no
// family matches, or the trailing operand bytes are missing) the reader is
// left untouched and ok is false.
func Decode(r *Reader) (i inst.Instruction, ok bool) {
	for _, parse := range parsers {
		if i, ok = parse(r); ok {
			return i, true
		}
	}
	return inst.Instruction{}, false
}

// DecodeBytes decodes the first instruction of buf, returning it along with
// its encoded length.
func DecodeBytes(buf []byte) (inst.Instruction, int, bool) {
	r := NewReader(buf)
	i, ok := Decode(r)
	return i, r.Count(), ok
}

var fixed = map[byte]inst.Instruction{
	opNop:  inst.Nop(),
	opRlc:  inst.Rlc(),
	opRrc:  inst.Rrc(),
	opRal:  inst.Ral(),
	opRar:  inst.Rar(),
	opDaa:  inst.Daa(),
	opCma:  inst.Cma(),
	opStc:  inst.Stc(),
	opCmc:  inst.Cmc(),
	opHlt:  inst.Hlt(),
	opRet:  inst.Ret(),
	opXthl: inst.Xthl(),
	opPchl: inst.Pchl(),
	opXchg: inst.Xchg(),
	opDi:   inst.Di(),
	opSphl: inst.Sphl(),
	opEi:   inst.Ei(),
}

func parseFixed(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok {
		return inst.Instruction{}, false
	}
	i, ok := fixed[b[0]]
	if !ok {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return i, true
}

func parseMov(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opMov, 0b1100_0000) {
		return inst.Instruction{}, false
	}
	dst := inst.Register(mask.Bits(b[0], 3, 5))
	src := inst.Register(mask.Bits(b[0], 0, 2))
	r.SkipN(1)
	return inst.Mov(dst, src), true
}

// the arithmetic/logical register group: 10 ooo sss
var aluOps = map[byte]func(inst.Register) inst.Instruction{
	opAdd: inst.Add,
	opAdc: inst.Adc,
	opSub: inst.Sub,
	opSbb: inst.Sbb,
	opAna: inst.Ana,
	opXra: inst.Xra,
	opOra: inst.Ora,
	opCmp: inst.Cmp,
}

func parseAlu(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok {
		return inst.Instruction{}, false
	}
	build, ok := aluOps[b[0]&0b1111_1000]
	if !ok {
		return inst.Instruction{}, false
	}
	src := inst.Register(mask.Bits(b[0], 0, 2))
	r.SkipN(1)
	return build(src), true
}

func parseInr(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opInr, 0b1100_0111) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Inr(inst.Register(mask.Bits(b[0], 3, 5))), true
}

func parseDcr(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opDcr, 0b1100_0111) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Dcr(inst.Register(mask.Bits(b[0], 3, 5))), true
}

func parseMvi(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(2)
	if !ok || !mask.EqMasked(b[0], opMvi, 0b1100_0111) {
		return inst.Instruction{}, false
	}
	i := inst.Mvi(inst.Register(mask.Bits(b[0], 3, 5)), b[1])
	r.SkipN(2)
	return i, true
}

func parseLxi(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(3)
	if !ok || !mask.EqMasked(b[0], opLxi, 0b1100_1111) {
		return inst.Instruction{}, false
	}
	pair := inst.RegisterPair(mask.Bits(b[0], 4, 5))
	i := inst.Lxi(pair, inst.Data16{Low: b[1], High: b[2]})
	r.SkipN(3)
	return i, true
}

func parseStax(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opStax, 0b1100_1111) {
		return inst.Instruction{}, false
	}
	// only BC and DE address indirectly; 0x22/0x32 carry the other two codes
	// and belong to SHLD/STA
	code := mask.Bits(b[0], 4, 5)
	if code > byte(inst.IndDE) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Stax(inst.PairIndirect(code)), true
}

func parseLdax(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opLdax, 0b1100_1111) {
		return inst.Instruction{}, false
	}
	code := mask.Bits(b[0], 4, 5)
	if code > byte(inst.IndDE) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Ldax(inst.PairIndirect(code)), true
}

func parseInx(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opInx, 0b1100_1111) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Inx(inst.RegisterPair(mask.Bits(b[0], 4, 5))), true
}

func parseDcx(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opDcx, 0b1100_1111) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Dcx(inst.RegisterPair(mask.Bits(b[0], 4, 5))), true
}

func parseDad(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opDad, 0b1100_1111) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Dad(inst.RegisterPair(mask.Bits(b[0], 4, 5))), true
}

func parsePush(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opPush, 0b1100_1111) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Push(inst.PairOrPSW(mask.Bits(b[0], 4, 5))), true
}

func parsePop(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opPop, 0b1100_1111) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Pop(inst.PairOrPSW(mask.Bits(b[0], 4, 5))), true
}

func parseRcc(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opRcc, 0b1100_0111) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Rcc(inst.Condition(mask.Bits(b[0], 3, 5))), true
}

func parseJcc(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(3)
	if !ok || !mask.EqMasked(b[0], opJcc, 0b1100_0111) {
		return inst.Instruction{}, false
	}
	cond := inst.Condition(mask.Bits(b[0], 3, 5))
	addr := inst.Data16{Low: b[1], High: b[2]}.Value()
	r.SkipN(3)
	return inst.Jcc(cond, addr), true
}

func parseCcc(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(3)
	if !ok || !mask.EqMasked(b[0], opCcc, 0b1100_0111) {
		return inst.Instruction{}, false
	}
	cond := inst.Condition(mask.Bits(b[0], 3, 5))
	addr := inst.Data16{Low: b[1], High: b[2]}.Value()
	r.SkipN(3)
	return inst.Ccc(cond, addr), true
}

func parseRst(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(1)
	if !ok || !mask.EqMasked(b[0], opRst, 0b1100_0111) {
		return inst.Instruction{}, false
	}
	r.SkipN(1)
	return inst.Rst(inst.RestartNumber(mask.Bits(b[0], 3, 5))), true
}

var imm8Ops = map[byte]func(inst.Data8) inst.Instruction{
	opAdi: inst.Adi,
	opAci: inst.Aci,
	opSui: inst.Sui,
	opSbi: inst.Sbi,
	opAni: inst.Ani,
	opXri: inst.Xri,
	opOri: inst.Ori,
	opCpi: inst.Cpi,
}

func parseImm8(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(2)
	if !ok {
		return inst.Instruction{}, false
	}
	build, ok := imm8Ops[b[0]]
	if !ok {
		return inst.Instruction{}, false
	}
	i := build(b[1])
	r.SkipN(2)
	return i, true
}

var direct16Ops = map[byte]func(inst.Address) inst.Instruction{
	opLda:  inst.Lda,
	opSta:  inst.Sta,
	opLhld: inst.Lhld,
	opShld: inst.Shld,
	opJmp:  inst.Jmp,
	opCall: inst.Call,
}

func parseDirect16(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(3)
	if !ok {
		return inst.Instruction{}, false
	}
	build, ok := direct16Ops[b[0]]
	if !ok {
		return inst.Instruction{}, false
	}
	i := build(inst.Data16{Low: b[1], High: b[2]}.Value())
	r.SkipN(3)
	return i, true
}

func parseIO(r *Reader) (inst.Instruction, bool) {
	b, ok := r.PeekN(2)
	if !ok {
		return inst.Instruction{}, false
	}
	switch b[0] {
	case opIn:
		r.SkipN(2)
		return inst.In(b[1]), true
	case opOut:
		r.SkipN(2)
		return inst.Out(b[1]), true
	}
	return inst.Instruction{}, false
}
