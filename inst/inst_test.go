package inst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestData16(t *testing.T) {
	assert.Equal(t, uint16(0x1234), Data16{Low: 0x34, High: 0x12}.Value())
	assert.Equal(t, Data16{Low: 0x34, High: 0x12}, U16(0x1234))
	assert.Equal(t, uint16(0), Data16{}.Value())
	assert.Equal(t, uint16(0xffff), U16(0xffff).Value())
}

func TestRegisterCodes(t *testing.T) {
	// ddd/sss field values from the 8080 manual
	assert.Equal(t, Register(0b000), B)
	assert.Equal(t, Register(0b110), M)
	assert.Equal(t, Register(0b111), A)
	assert.Equal(t, RegisterPair(0b11), SP)
}

func TestConditionCodes(t *testing.T) {
	// documented ccc encoding: NZ=000 Z=001 NC=010 C=011 PO=100 PE=101 P=110 M=111
	for want, c := range []Condition{NoZero, Zero, NoCarry, Carry, ParityOdd, ParityEven, Positive, Minus} {
		assert.Equal(t, Condition(want), c)
	}
}

func TestRestartTarget(t *testing.T) {
	assert.Equal(t, Address(0), RestartNumber(0).Target())
	assert.Equal(t, Address(0x38), RestartNumber(7).Target())
}

func TestPairOrPSW(t *testing.T) {
	p, ok := PushHL.Pair()
	assert.True(t, ok)
	assert.Equal(t, HL, p)

	_, ok = PushPSW.Pair()
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	assert.Equal(t, "MOV A, B", Mov(A, B).String())
	assert.Equal(t, "MVI M, 41H", Mvi(M, 0x41).String())
	assert.Equal(t, "LXI SP, 2000H", Lxi(SP, U16(0x2000)).String())
	assert.Equal(t, "JNZ 0013H", Jcc(NoZero, 0x13).String())
	assert.Equal(t, "CPE 1234H", Ccc(ParityEven, 0x1234).String())
	assert.Equal(t, "RM", Rcc(Minus).String())
	assert.Equal(t, "RST 7", Rst(7).String())
	assert.Equal(t, "PUSH PSW", Push(PushPSW).String())
	assert.Equal(t, "LDAX D", Ldax(IndDE).String())
	assert.Equal(t, "OUT 01H", Out(1).String())
	assert.Equal(t, "HLT", Hlt().String())
}
