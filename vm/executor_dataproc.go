package vm

// resolveOperand2 computes the value and shifter carry-out of a
// data-processing instruction's second operand, per spec.md §4.5/§4.7.
// Immediate operands are stored by the decoder in one of three raw
// shapes depending on encoding; this is the single place that expands
// them, so every opcode handler shares the same carry semantics.
func resolveOperand2(cpu *CPU, inst *Instruction, opnd Operand) (uint32, bool) {
	currentCarry := cpu.APSR().C
	switch opnd.Kind {
	case OpImmediate:
		switch {
		case !inst.Thumb:
			return ARMExpandImm(opnd.Imm, currentCarry)
		case inst.Wide:
			i := (opnd.Imm >> 11) & 0x1
			imm3 := (opnd.Imm >> 8) & 0x7
			imm8 := opnd.Imm & 0xFF
			return ThumbExpandImm(i, imm3, imm8, currentCarry)
		default:
			return opnd.Imm, currentCarry
		}
	case OpRegister:
		return cpu.GetRegister(opnd.Reg), currentCarry
	case OpRegisterShift:
		v := cpu.GetRegister(opnd.Reg)
		return ApplyShift(opnd.Sh.Type, v, opnd.Sh.Amount(cpu), currentCarry)
	}
	return 0, currentCarry
}

// execDataProcessing implements the ADC/ADD/AND/.../SUB family of
// spec.md §4.7. Rd, Rn, and the second operand are read from
// inst.Operands[0..2] except for MOV/MVN which omit Rn.
func execDataProcessing(cpu *CPU, inst *Instruction) error {
	d := inst.Operands[0].Reg

	var n uint32
	var opnd2 Operand
	switch inst.Op {
	case OpMOV, OpMVN, OpRRX:
		opnd2 = inst.Operands[1]
	default:
		n = cpu.GetRegister(inst.Operands[1].Reg)
		opnd2 = inst.Operands[2]
	}

	op2, shiftCarry := resolveOperand2(cpu, inst, opnd2)

	var result uint32
	var carryOut, overflow bool
	logical := false

	switch inst.Op {
	case OpAND:
		result, carryOut, logical = n&op2, shiftCarry, true
	case OpEOR:
		result, carryOut, logical = n^op2, shiftCarry, true
	case OpORR:
		result, carryOut, logical = n|op2, shiftCarry, true
	case OpORN:
		result, carryOut, logical = n|^op2, shiftCarry, true
	case OpBIC:
		result, carryOut, logical = n&^op2, shiftCarry, true
	case OpMOV:
		result, carryOut, logical = op2, shiftCarry, true
	case OpMVN:
		result, carryOut, logical = ^op2, shiftCarry, true
	case OpRRX:
		result, carryOut = RRX(op2, cpu.APSR().C)
		logical = true
	case OpLSL:
		amount := inst.Operands[1].Sh.Amount(cpu)
		result, carryOut = ApplyShift(ShiftLSL, cpu.GetRegister(inst.Operands[1].Reg), amount, cpu.APSR().C)
		logical = true
	case OpLSR:
		amount := inst.Operands[1].Sh.Amount(cpu)
		result, carryOut = LSR(cpu.GetRegister(inst.Operands[1].Reg), amount)
		logical = true
	case OpASR:
		amount := inst.Operands[1].Sh.Amount(cpu)
		result, carryOut = ASR(cpu.GetRegister(inst.Operands[1].Reg), amount)
		logical = true
	case OpROR:
		amount := inst.Operands[1].Sh.Amount(cpu)
		result, carryOut = ApplyShift(ShiftROR, cpu.GetRegister(inst.Operands[1].Reg), amount, cpu.APSR().C)
		logical = true
	case OpADD:
		result, carryOut, overflow = AddWithCarry(n, op2, false)
	case OpADC:
		result, carryOut, overflow = AddWithCarry(n, op2, cpu.APSR().C)
	case OpSUB:
		result, carryOut, overflow = AddWithCarry(n, ^op2, true)
	case OpSBC:
		result, carryOut, overflow = AddWithCarry(n, ^op2, cpu.APSR().C)
	case OpRSB:
		result, carryOut, overflow = AddWithCarry(op2, ^n, true)
	case OpRSC:
		result, carryOut, overflow = AddWithCarry(op2, ^n, cpu.APSR().C)
	}

	cpu.SetRegister(d, result)

	if inst.SetFlags {
		if d == PC {
			cpu.RestoreCPSR()
		} else if logical {
			cpu.SetNZC(result&SignBitMask != 0, result == 0, carryOut)
		} else {
			cpu.SetNZCV(result&SignBitMask != 0, result == 0, carryOut, overflow)
		}
	}

	if d == PC {
		return writePC(cpu, result)
	}
	return nil
}

// execCompare implements CMN/CMP/TST/TEQ: always sets flags, never
// writes a register.
func execCompare(cpu *CPU, inst *Instruction) error {
	n := cpu.GetRegister(inst.Operands[0].Reg)
	op2, shiftCarry := resolveOperand2(cpu, inst, inst.Operands[1])

	switch inst.Op {
	case OpCMP:
		result, carryOut, overflow := AddWithCarry(n, ^op2, true)
		cpu.SetNZCV(result&SignBitMask != 0, result == 0, carryOut, overflow)
	case OpCMN:
		result, carryOut, overflow := AddWithCarry(n, op2, false)
		cpu.SetNZCV(result&SignBitMask != 0, result == 0, carryOut, overflow)
	case OpTST:
		result := n & op2
		cpu.SetNZC(result&SignBitMask != 0, result == 0, shiftCarry)
	case OpTEQ:
		result := n ^ op2
		cpu.SetNZC(result&SignBitMask != 0, result == 0, shiftCarry)
	}
	return nil
}
