package vm

// execExtend implements the SXT*/UXT* extension/extract family of
// spec.md §4.7: each opcode takes the low byte or halfword (or, for the
// B16 forms, both halfwords' low bytes) of Rm, sign- or zero-extends it,
// and optionally adds an accumulator register Rn. Rm is used unrotated:
// no rotation by 8, 16 or 24 is applied.
func execExtend(cpu *CPU, inst *Instruction) error {
	d := inst.Operands[0].Reg
	m := cpu.GetRegister(inst.Operands[1].Reg)

	var result uint32
	switch inst.Op {
	case OpSXTB, OpSXTAB:
		result = uint32(int32(int8(m)))
	case OpUXTB, OpUXTAB:
		result = m & 0xFF
	case OpSXTH, OpSXTAH:
		result = uint32(int32(int16(m)))
	case OpUXTH, OpUXTAH:
		result = m & 0xFFFF
	case OpSXTB16, OpSXTAB16:
		lo := uint32(int32(int8(m)))
		hi := uint32(int32(int8(m >> 16)))
		result = (lo & 0xFFFF) | (hi << 16)
	case OpUXTB16, OpUXTAB16:
		result = (m & 0xFF) | (m & 0xFF0000)
	}

	switch inst.Op {
	case OpSXTAB, OpUXTAB, OpSXTAH, OpUXTAH, OpSXTAB16, OpUXTAB16:
		n := cpu.GetRegister(inst.Operands[2].Reg)
		result = n + result
	}

	cpu.SetRegister(d, result)
	return nil
}

// execSEL implements SEL: selects each byte of Rn or Rm per the
// corresponding GE bit.
func execSEL(cpu *CPU, inst *Instruction) error {
	d := inst.Operands[0].Reg
	n := cpu.GetRegister(inst.Operands[1].Reg)
	m := cpu.GetRegister(inst.Operands[2].Reg)
	ge := cpu.APSR().GE

	var result uint32
	for i := 0; i < 4; i++ {
		var b uint32
		if ge[i] {
			b = lane8(n, i)
		} else {
			b = lane8(m, i)
		}
		result |= b << uint(i*8)
	}
	cpu.SetRegister(d, result)
	return nil
}

// execUSAD implements USAD8/USADA8: sum of absolute differences of four
// unsigned byte lanes, with USADA8 adding an accumulator.
func execUSAD(cpu *CPU, inst *Instruction) error {
	d := inst.Operands[0].Reg
	m := cpu.GetRegister(inst.Operands[1].Reg)
	s := cpu.GetRegister(inst.Operands[2].Reg)

	var sum uint32
	for i := 0; i < 4; i++ {
		a, b := int32(lane8(m, i)), int32(lane8(s, i))
		diff := a - b
		if diff < 0 {
			diff = -diff
		}
		sum += uint32(diff)
	}
	if inst.Op == OpUSADA8 {
		sum += cpu.GetRegister(inst.Operands[3].Reg)
	}
	cpu.SetRegister(d, sum)
	return nil
}

// execIT loads a new IT-block state, per spec.md §4.2/§4.7: the
// instruction's own condition is CondAL's first-cond slot (already
// carried in inst.Condition by the decoder); mask's low set bit marks
// how many following instructions are governed.
func execIT(cpu *CPU, inst *Instruction) error {
	mask := inst.Operands[0].Imm & 0xF
	firstCond := uint32(inst.Condition) & 0xF
	it := firstCond<<4 | mask

	trailingZeros := 0
	for b := mask; b&0x1 == 0 && trailingZeros < 4; b >>= 1 {
		trailingZeros++
	}
	cpu.ITBlockRemaining = 4 - trailingZeros
	cpu.SetITState(it)
	return nil
}
