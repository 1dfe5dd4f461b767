package vm

import "math/bits"

// execBitfield implements BFC/BFI/SBFX/UBFX/CLZ/RBIT/REV/REV16/REVSH, per
// spec.md §4.7's bitfield family. None of these set flags.
func execBitfield(cpu *CPU, inst *Instruction) error {
	switch inst.Op {
	case OpBFC:
		d := inst.Operands[0].Reg
		mask := bitfieldMask(inst.Lsb, inst.Msb)
		cpu.SetRegister(d, cpu.GetRegister(d)&^mask)

	case OpBFI:
		d := inst.Operands[0].Reg
		n := cpu.GetRegister(inst.Operands[1].Reg)
		mask := bitfieldMask(inst.Lsb, inst.Msb)
		inserted := (n << uint(inst.Lsb)) & mask
		cpu.SetRegister(d, (cpu.GetRegister(d)&^mask)|inserted)

	case OpSBFX:
		d := inst.Operands[0].Reg
		n := cpu.GetRegister(inst.Operands[1].Reg)
		width := uint(inst.Msb - inst.Lsb + 1)
		shifted := n >> uint(inst.Lsb)
		shifted &= (1 << width) - 1
		signBit := uint32(1) << (width - 1)
		if shifted&signBit != 0 {
			shifted |= ^uint32(0) << width
		}
		cpu.SetRegister(d, shifted)

	case OpUBFX:
		d := inst.Operands[0].Reg
		n := cpu.GetRegister(inst.Operands[1].Reg)
		width := uint(inst.Msb - inst.Lsb + 1)
		shifted := (n >> uint(inst.Lsb)) & ((1 << width) - 1)
		cpu.SetRegister(d, shifted)

	case OpCLZ:
		d := inst.Operands[0].Reg
		m := cpu.GetRegister(inst.Operands[1].Reg)
		cpu.SetRegister(d, uint32(bits.LeadingZeros32(m)))

	case OpRBIT:
		d := inst.Operands[0].Reg
		m := cpu.GetRegister(inst.Operands[1].Reg)
		cpu.SetRegister(d, bits.Reverse32(m))

	case OpREV:
		d := inst.Operands[0].Reg
		m := cpu.GetRegister(inst.Operands[1].Reg)
		cpu.SetRegister(d, bits.ReverseBytes32(m))

	case OpREV16:
		d := inst.Operands[0].Reg
		m := cpu.GetRegister(inst.Operands[1].Reg)
		lo := bits.ReverseBytes16(uint16(m))
		hi := bits.ReverseBytes16(uint16(m >> 16))
		cpu.SetRegister(d, uint32(lo)|uint32(hi)<<16)

	case OpREVSH:
		d := inst.Operands[0].Reg
		m := cpu.GetRegister(inst.Operands[1].Reg)
		swapped := bits.ReverseBytes16(uint16(m))
		cpu.SetRegister(d, uint32(int32(int16(swapped))))
	}
	return nil
}

func bitfieldMask(lsb, msb int) uint32 {
	width := uint(msb - lsb + 1)
	return ((uint32(1) << width) - 1) << uint(lsb)
}
