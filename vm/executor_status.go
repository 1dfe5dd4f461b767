package vm

// execMRS implements MRS: reads CPSR or SPSR wholesale into Rd, per
// spec.md §4.8.
func execMRS(cpu *CPU, inst *Instruction) error {
	d := inst.Operands[0].Reg
	if inst.WriteSPSRBit {
		cpu.SetRegister(d, cpu.SPSR)
	} else {
		cpu.SetRegister(d, cpu.CPSR)
	}
	return nil
}

// execMSR implements MSR: writes the field-masked subset of CPSR/SPSR
// named by inst.FieldMask, per spec.md §4.8's write policy. The
// control-field byte (c, bits7:0) and extension byte (x, bits15:8) are
// privileged; user mode may only update the flags byte (f, bits31:24)
// and, on this implementation, the status byte (s, bits23:16) which
// includes the GE bits.
func execMSR(cpu *CPU, inst *Instruction) error {
	// Unlike ordinary data-processing operands, the decoder has already
	// fully expanded an MSR immediate (it has no register-operand S-bit
	// carry behavior to defer), so the value is read directly rather than
	// through resolveOperand2.
	var value uint32
	switch inst.Operands[0].Kind {
	case OpImmediate:
		value = inst.Operands[0].Imm
	default:
		value = cpu.GetRegister(inst.Operands[0].Reg)
	}
	fm := inst.FieldMask

	target := &cpu.CPSR
	if fm.WriteSPSR {
		target = &cpu.SPSR
	}

	privileged := cpu.IsPrivileged()

	var mask uint32
	if fm.F {
		mask |= 0xFF000000
	}
	if fm.S {
		mask |= 0x00FF0000
	}
	if privileged {
		if fm.X {
			mask |= 0x0000FF00
		}
		if fm.C {
			mask |= 0x000000FF
		}
	}

	*target = (*target &^ mask) | (value & mask)
	return nil
}
