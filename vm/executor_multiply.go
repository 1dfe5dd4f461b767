package vm

import "fmt"

// execMultiply implements the multiply/accumulate family of spec.md
// §4.7 reachable from this engine's decoder: MUL/MLA, the four long
// multiplies, the dual multiply-accumulates (SMUAD/SMUSD/SMLAD/SMLSD),
// and the most-significant-word multiplies (SMMUL/SMMLA/SMMLS). The
// remaining enumerated opcodes (MLS, UMAAL, the xy-suffixed halfword
// multiplies, SMLALD/SMLSLD) have no encoding this decoder produces yet
// and report ErrUnimplemented rather than silently miscomputing.
func execMultiply(cpu *CPU, inst *Instruction) error {
	switch inst.Op {
	case OpMUL:
		d := inst.Operands[0].Reg
		m := cpu.GetRegister(inst.Operands[1].Reg)
		s := cpu.GetRegister(inst.Operands[2].Reg)
		result := m * s
		cpu.SetRegister(d, result)
		if inst.SetFlags {
			cpu.SetNZC(result&SignBitMask != 0, result == 0, cpu.APSR().C)
		}
		return nil

	case OpMLA:
		d := inst.Operands[0].Reg
		m := cpu.GetRegister(inst.Operands[1].Reg)
		s := cpu.GetRegister(inst.Operands[2].Reg)
		acc := cpu.GetRegister(inst.Operands[3].Reg)
		result := m*s + acc
		cpu.SetRegister(d, result)
		if inst.SetFlags {
			cpu.SetNZC(result&SignBitMask != 0, result == 0, cpu.APSR().C)
		}
		return nil

	case OpUMULL, OpUMLAL, OpSMULL, OpSMLAL:
		return execLongMultiply(cpu, inst)

	case OpSMUAD, OpSMUSD, OpSMLAD, OpSMLSD:
		return execDualMultiply(cpu, inst)

	case OpSMMUL, OpSMMLA, OpSMMLS:
		return execMSWMultiply(cpu, inst)
	}
	return fmt.Errorf("%w: multiply opcode %d", ErrUnimplemented, inst.Op)
}

func execLongMultiply(cpu *CPU, inst *Instruction) error {
	rdLo := inst.Operands[0].Reg
	rdHi := inst.Operands[1].Reg
	m := cpu.GetRegister(inst.Operands[2].Reg)
	s := cpu.GetRegister(inst.Operands[3].Reg)

	var product uint64
	switch inst.Op {
	case OpUMULL, OpUMLAL:
		product = uint64(m) * uint64(s)
	default:
		product = uint64(int64(int32(m)) * int64(int32(s)))
	}

	switch inst.Op {
	case OpUMLAL, OpSMLAL:
		acc := uint64(cpu.GetRegister(rdLo)) | uint64(cpu.GetRegister(rdHi))<<32
		product += acc
	}

	cpu.SetRegister(rdLo, uint32(product))
	cpu.SetRegister(rdHi, uint32(product>>32))
	if inst.SetFlags {
		cpu.SetNZC(product&(1<<63) != 0, product == 0, cpu.APSR().C)
	}
	return nil
}

// execDualMultiply implements SMUAD/SMUSD/SMLAD/SMLSD: Rm and Rs each
// split into two signed 16-bit halves; the products of matching halves
// (or, for the X forms flagged in inst.Accumulate, the cross products)
// are summed (AD) or subtracted (SD) and optionally accumulated into Rn.
func execDualMultiply(cpu *CPU, inst *Instruction) error {
	d := inst.Operands[0].Reg
	m := cpu.GetRegister(inst.Operands[1].Reg)
	s := cpu.GetRegister(inst.Operands[2].Reg)

	m0, m1 := int32(int16(m)), int32(int16(m>>16))
	s0, s1 := int32(int16(s)), int32(int16(s>>16))
	if inst.Accumulate {
		s0, s1 = s1, s0
	}

	p0 := int64(m0) * int64(s0)
	p1 := int64(m1) * int64(s1)

	var sum int64
	switch inst.Op {
	case OpSMUAD, OpSMLAD:
		sum = p0 + p1
	default:
		sum = p0 - p1
	}

	if inst.Op == OpSMLAD || inst.Op == OpSMLSD {
		acc := int64(int32(cpu.GetRegister(inst.Operands[3].Reg)))
		sum += acc
	}

	cpu.SetRegister(d, uint32(sum))
	return nil
}

func execMSWMultiply(cpu *CPU, inst *Instruction) error {
	d := inst.Operands[0].Reg
	m := int64(int32(cpu.GetRegister(inst.Operands[1].Reg)))
	s := int64(int32(cpu.GetRegister(inst.Operands[2].Reg)))
	product := m * s

	var acc int64
	if inst.Op != OpSMMUL {
		acc = int64(int32(cpu.GetRegister(inst.Operands[3].Reg))) << 32
	}

	var result int64
	if inst.Op == OpSMMLS {
		result = acc - product
	} else {
		result = acc + product
	}
	cpu.SetRegister(d, uint32(result>>32))
	return nil
}
