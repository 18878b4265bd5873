package coding

import (
	"otto/inst"
	"otto/mask"
)

// Opcode bases. Operand fields are OR-ed into these: sss at bit 0, ddd and
// ccc/nnn at bit 3, rp at bit 4.
const (
	opNop  = 0x00
	opLxi  = 0x01
	opStax = 0x02
	opInx  = 0x03
	opInr  = 0x04
	opDcr  = 0x05
	opMvi  = 0x06
	opRlc  = 0x07
	opDad  = 0x09
	opLdax = 0x0a
	opDcx  = 0x0b
	opRrc  = 0x0f
	opRal  = 0x17
	opRar  = 0x1f
	opShld = 0x22
	opDaa  = 0x27
	opLhld = 0x2a
	opCma  = 0x2f
	opSta  = 0x32
	opStc  = 0x37
	opLda  = 0x3a
	opCmc  = 0x3f
	opMov  = 0x40
	opHlt  = 0x76
	opAdd  = 0x80
	opAdc  = 0x88
	opSub  = 0x90
	opSbb  = 0x98
	opAna  = 0xa0
	opXra  = 0xa8
	opOra  = 0xb0
	opCmp  = 0xb8
	opRcc  = 0xc0
	opPop  = 0xc1
	opJcc  = 0xc2
	opJmp  = 0xc3
	opCcc  = 0xc4
	opPush = 0xc5
	opAdi  = 0xc6
	opRst  = 0xc7
	opRet  = 0xc9
	opCall = 0xcd
	opAci  = 0xce
	opOut  = 0xd3
	opSui  = 0xd6
	opIn   = 0xdb
	opSbi  = 0xde
	opXthl = 0xe3
	opAni  = 0xe6
	opPchl = 0xe9
	opXchg = 0xeb
	opXri  = 0xee
	opDi   = 0xf3
	opOri  = 0xf6
	opSphl = 0xf9
	opEi   = 0xfb
	opCpi  = 0xfe
)

func sss(base byte, r inst.Register) byte      { return mask.Insert(base, byte(r), 0) }
func ddd(base byte, r inst.Register) byte      { return mask.Insert(base, byte(r), 3) }
func rp(base byte, p inst.RegisterPair) byte   { return mask.Insert(base, byte(p), 4) }
func rpi(base byte, p inst.PairIndirect) byte  { return mask.Insert(base, byte(p), 4) }
func rps(base byte, p inst.PairOrPSW) byte     { return mask.Insert(base, byte(p), 4) }
func ccc(base byte, c inst.Condition) byte     { return mask.Insert(base, byte(c), 3) }
func nnn(base byte, n inst.RestartNumber) byte { return mask.Insert(base, byte(n), 3) }

// Len is the encoded byte length of i: 1, 2 or 3, fixed per opcode family.
func Len(i inst.Instruction) int {
	switch i.Op {
	case inst.OpMvi, inst.OpAdi, inst.OpAci, inst.OpSui, inst.OpSbi,
		inst.OpAni, inst.OpXri, inst.OpOri, inst.OpCpi,
		inst.OpIn, inst.OpOut:
		return 2
	case inst.OpLxi, inst.OpLda, inst.OpSta, inst.OpLhld, inst.OpShld,
		inst.OpJmp, inst.OpJcc, inst.OpCall, inst.OpCcc:
		return 3
	}
	return 1
}

// Append appends the canonical encoding of i to dst and returns the extended
// slice. It never allocates when dst has capacity for Len(i) more bytes.
func Append(dst []byte, i inst.Instruction) []byte {
	switch i.Op {
	case inst.OpNop:
		return append(dst, opNop)
	case inst.OpMov:
		return append(dst, sss(ddd(opMov, i.Dst), i.Src))
	case inst.OpMvi:
		return append(dst, ddd(opMvi, i.Dst), i.Imm.Low)
	case inst.OpLxi:
		return append(dst, rp(opLxi, i.Pair), i.Imm.Low, i.Imm.High)
	case inst.OpLda:
		return append(dst, opLda, i.Imm.Low, i.Imm.High)
	case inst.OpSta:
		return append(dst, opSta, i.Imm.Low, i.Imm.High)
	case inst.OpLhld:
		return append(dst, opLhld, i.Imm.Low, i.Imm.High)
	case inst.OpShld:
		return append(dst, opShld, i.Imm.Low, i.Imm.High)
	case inst.OpLdax:
		return append(dst, rpi(opLdax, i.Ind))
	case inst.OpStax:
		return append(dst, rpi(opStax, i.Ind))
	case inst.OpXchg:
		return append(dst, opXchg)
	case inst.OpAdd:
		return append(dst, sss(opAdd, i.Src))
	case inst.OpAdi:
		return append(dst, opAdi, i.Imm.Low)
	case inst.OpAdc:
		return append(dst, sss(opAdc, i.Src))
	case inst.OpAci:
		return append(dst, opAci, i.Imm.Low)
	case inst.OpSub:
		return append(dst, sss(opSub, i.Src))
	case inst.OpSui:
		return append(dst, opSui, i.Imm.Low)
	case inst.OpSbb:
		return append(dst, sss(opSbb, i.Src))
	case inst.OpSbi:
		return append(dst, opSbi, i.Imm.Low)
	case inst.OpInr:
		return append(dst, ddd(opInr, i.Dst))
	case inst.OpDcr:
		return append(dst, ddd(opDcr, i.Dst))
	case inst.OpInx:
		return append(dst, rp(opInx, i.Pair))
	case inst.OpDcx:
		return append(dst, rp(opDcx, i.Pair))
	case inst.OpDad:
		return append(dst, rp(opDad, i.Pair))
	case inst.OpDaa:
		return append(dst, opDaa)
	case inst.OpAna:
		return append(dst, sss(opAna, i.Src))
	case inst.OpAni:
		return append(dst, opAni, i.Imm.Low)
	case inst.OpXra:
		return append(dst, sss(opXra, i.Src))
	case inst.OpXri:
		return append(dst, opXri, i.Imm.Low)
	case inst.OpOra:
		return append(dst, sss(opOra, i.Src))
	case inst.OpOri:
		return append(dst, opOri, i.Imm.Low)
	case inst.OpCmp:
		return append(dst, sss(opCmp, i.Src))
	case inst.OpCpi:
		return append(dst, opCpi, i.Imm.Low)
	case inst.OpRlc:
		return append(dst, opRlc)
	case inst.OpRrc:
		return append(dst, opRrc)
	case inst.OpRal:
		return append(dst, opRal)
	case inst.OpRar:
		return append(dst, opRar)
	case inst.OpCma:
		return append(dst, opCma)
	case inst.OpCmc:
		return append(dst, opCmc)
	case inst.OpStc:
		return append(dst, opStc)
	case inst.OpJmp:
		return append(dst, opJmp, i.Imm.Low, i.Imm.High)
	case inst.OpJcc:
		return append(dst, ccc(opJcc, i.Cond), i.Imm.Low, i.Imm.High)
	case inst.OpCall:
		return append(dst, opCall, i.Imm.Low, i.Imm.High)
	case inst.OpCcc:
		return append(dst, ccc(opCcc, i.Cond), i.Imm.Low, i.Imm.High)
	case inst.OpRet:
		return append(dst, opRet)
	case inst.OpRcc:
		return append(dst, ccc(opRcc, i.Cond))
	case inst.OpRst:
		return append(dst, nnn(opRst, i.Rst))
	case inst.OpPchl:
		return append(dst, opPchl)
	case inst.OpPush:
		return append(dst, rps(opPush, i.PP))
	case inst.OpPop:
		return append(dst, rps(opPop, i.PP))
	case inst.OpXthl:
		return append(dst, opXthl)
	case inst.OpSphl:
		return append(dst, opSphl)
	case inst.OpIn:
		return append(dst, opIn, i.Port)
	case inst.OpOut:
		return append(dst, opOut, i.Port)
	case inst.OpEi:
		return append(dst, opEi)
	case inst.OpDi:
		return append(dst, opDi)
	case inst.OpHlt:
		return append(dst, opHlt)
	}
	panic("encode: unknown op")
}

// Encode returns the canonical encoding of i as a fresh slice.
func Encode(i inst.Instruction) []byte {
	return Append(make([]byte, 0, 3), i)
}
