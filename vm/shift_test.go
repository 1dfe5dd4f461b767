package vm

import "testing"

func TestLSL(t *testing.T) {
	tests := []struct {
		v, n     uint32
		expected uint32
		carry    bool
	}{
		{0x1, 0, 0x1, false},
		{0x1, 4, 0x10, false},
		{0x80000000, 1, 0, true},
		{0x1, 32, 0, true},
		{0x1, 33, 0, false},
	}
	for _, tt := range tests {
		got, carry := LSL(tt.v, uint(tt.n))
		if got != tt.expected || carry != tt.carry {
			t.Errorf("LSL(0x%X, %d) = 0x%X,%v; want 0x%X,%v", tt.v, tt.n, got, carry, tt.expected, tt.carry)
		}
	}
}

func TestLSR(t *testing.T) {
	tests := []struct {
		v, n     uint32
		expected uint32
		carry    bool
	}{
		{0x80000000, 31, 0x1, false},
		{0x80000000, 0, 0, true}, // n=0 means n=32
		{0x1, 1, 0, true},
	}
	for _, tt := range tests {
		got, carry := LSR(tt.v, uint(tt.n))
		if got != tt.expected || carry != tt.carry {
			t.Errorf("LSR(0x%X, %d) = 0x%X,%v; want 0x%X,%v", tt.v, tt.n, got, carry, tt.expected, tt.carry)
		}
	}
}

func TestASR(t *testing.T) {
	got, carry := ASR(0x80000000, 4)
	if got != 0xF8000000 || carry {
		t.Errorf("ASR negative: got 0x%X,%v", got, carry)
	}
	got, carry = ASR(0x80000000, 0) // n=0 means n=32
	if got != 0xFFFFFFFF || !carry {
		t.Errorf("ASR#32 of negative: got 0x%X,%v", got, carry)
	}
}

func TestROR(t *testing.T) {
	got, carry := ROR(0x1, 1)
	if got != 0x80000000 || !carry {
		t.Errorf("ROR(1,1) = 0x%X,%v; want 0x80000000,true", got, carry)
	}
}

func TestRRX(t *testing.T) {
	got, carryOut := RRX(0x2, true)
	if got != 0x80000001 || carryOut {
		t.Errorf("RRX(0x2, true) = 0x%X,%v; want 0x80000001,false", got, carryOut)
	}
}

func TestAddWithCarry(t *testing.T) {
	tests := []struct {
		x, y       uint32
		carryIn    bool
		result     uint32
		carryOut   bool
		overflow   bool
	}{
		{1, 1, false, 2, false, false},
		{0xFFFFFFFF, 1, false, 0, true, false},
		{0x7FFFFFFF, 1, false, 0x80000000, false, true}, // signed overflow
		{0x80000000, 0xFFFFFFFF, false, 0x7FFFFFFF, true, true},
		{5, ^uint32(3), true, 2, true, false}, // 5 - 3 via x + ^y + 1
	}
	for _, tt := range tests {
		result, carryOut, overflow := AddWithCarry(tt.x, tt.y, tt.carryIn)
		if result != tt.result || carryOut != tt.carryOut || overflow != tt.overflow {
			t.Errorf("AddWithCarry(0x%X,0x%X,%v) = 0x%X,%v,%v; want 0x%X,%v,%v",
				tt.x, tt.y, tt.carryIn, result, carryOut, overflow, tt.result, tt.carryOut, tt.overflow)
		}
	}
}

func TestSignedSat(t *testing.T) {
	v, sat := SignedSat(200, 8)
	if v != 127 || !sat {
		t.Errorf("SignedSat(200,8) = %d,%v; want 127,true", v, sat)
	}
	v, sat = SignedSat(-200, 8)
	if v != -128 || !sat {
		t.Errorf("SignedSat(-200,8) = %d,%v; want -128,true", v, sat)
	}
	v, sat = SignedSat(10, 8)
	if v != 10 || sat {
		t.Errorf("SignedSat(10,8) = %d,%v; want 10,false", v, sat)
	}
}

func TestUnsignedSat(t *testing.T) {
	v, sat := UnsignedSat(-5, 8)
	if v != 0 || !sat {
		t.Errorf("UnsignedSat(-5,8) = %d,%v; want 0,true", v, sat)
	}
	v, sat = UnsignedSat(300, 8)
	if v != 255 || !sat {
		t.Errorf("UnsignedSat(300,8) = %d,%v; want 255,true", v, sat)
	}
}

func TestARMExpandImm(t *testing.T) {
	v, _ := ARMExpandImm(0x0FF, false) // rotate=0
	if v != 0xFF {
		t.Errorf("ARMExpandImm(0xFF,rot=0) = 0x%X; want 0xFF", v)
	}
	v, carry := ARMExpandImm(0x4FF, false) // rotate field=4 -> rotate by 8
	if v != 0xFF000000 || !carry {
		t.Errorf("ARMExpandImm(0x4FF) = 0x%X,%v; want 0xFF000000,true", v, carry)
	}
}

func TestThumbExpandImm(t *testing.T) {
	// topTwo==0, pattern 00: value is imm8 unchanged.
	v, _ := ThumbExpandImm(0, 0, 0x7F, false)
	if v != 0x7F {
		t.Errorf("ThumbExpandImm pattern00 = 0x%X; want 0x7F", v)
	}
	// pattern 01: 00XY00XY
	v, _ = ThumbExpandImm(0, 0b001, 0xAB, false)
	if v != 0x00AB00AB {
		t.Errorf("ThumbExpandImm pattern01 = 0x%X; want 0x00AB00AB", v)
	}
	// pattern 10: XY00XY00
	v, _ = ThumbExpandImm(0, 0b010, 0xAB, false)
	if v != 0xAB00AB00 {
		t.Errorf("ThumbExpandImm pattern10 = 0x%X; want 0xAB00AB00", v)
	}
	// pattern 11: XYXYXYXY
	v, _ = ThumbExpandImm(0, 0b011, 0xAB, false)
	if v != 0xABABABAB {
		t.Errorf("ThumbExpandImm pattern11 = 0x%X; want 0xABABABAB", v)
	}
	// rotated form: i=1, imm3=7, imm8=0 -> unrotated=0x80, rotate=1<<4|7<<1|0=30
	v, _ = ThumbExpandImm(1, 7, 0, false)
	want, _ := ROR(0x80, 30)
	if v != want {
		t.Errorf("ThumbExpandImm rotated = 0x%X; want 0x%X", v, want)
	}
}
