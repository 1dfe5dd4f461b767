package vm

// execBranch implements B/BL/BLX/BLX(reg)/BX/CBZ/CBNZ/TBB/TBH, per
// spec.md §4.7's branch family. All PC-relative offsets are relative to
// the address of the branch instruction plus the architectural PC bias
// (already folded into inst.Address/GetPC by the fetch loop, per §3
// invariant 1: PC observed by an instruction is its own address plus the
// pipeline bias).
func execBranch(cpu *CPU, mem *Memory, inst *Instruction) error {
	switch inst.Op {
	case OpB:
		offset := int32(inst.Operands[0].Imm)
		target := uint32(int32(cpu.GetPC()) + offset)
		branchWritePC(cpu, target)
		return nil

	case OpBL:
		offset := int32(inst.Operands[0].Imm)
		linkTo := linkAddress(cpu)
		target := uint32(int32(cpu.GetPC()) + offset)
		cpu.SetLR(linkTo)
		branchWritePC(cpu, target)
		return nil

	case OpBLXReg:
		m := cpu.GetRegister(inst.Operands[0].Reg)
		linkTo := linkAddress(cpu)
		cpu.SetLR(linkTo)
		return bxWritePC(cpu, m)

	case OpBX:
		m := cpu.GetRegister(inst.Operands[0].Reg)
		return bxWritePC(cpu, m)

	case OpCBZ, OpCBNZ:
		n := cpu.GetRegister(inst.Operands[0].Reg)
		zero := n == 0
		take := (inst.Op == OpCBZ && zero) || (inst.Op == OpCBNZ && !zero)
		if take {
			offset := inst.Operands[1].Imm
			target := cpu.GetPC() + offset
			branchWritePC(cpu, target)
		}
		return nil

	case OpTBB, OpTBH:
		n := cpu.GetRegister(inst.Operands[0].Reg)
		m := cpu.GetRegister(inst.Operands[1].Reg)
		var tableValue uint32
		if inst.Op == OpTBB {
			b, err := mem.ReadByte(n + m)
			if err != nil {
				return err
			}
			tableValue = uint32(b)
		} else {
			hw, err := mem.ReadHalfword(n + m*2)
			if err != nil {
				return err
			}
			tableValue = uint32(hw)
		}
		branchWritePC(cpu, cpu.GetPC()+2*tableValue)
		return nil
	}
	return nil
}

// linkAddress computes the return address BL/BLX(reg) stash in LR:
// PC-4 in ARM state (the instruction's own address, since GetPC already
// carries the +8 pipeline bias), or PC|1 in Thumb state (the +4 bias,
// with bit 0 set to keep the return interworking into Thumb), per
// spec.md §4.7.
func linkAddress(cpu *CPU) uint32 {
	if cpu.ISetState() == ISetThumb {
		return cpu.GetPC() | 1
	}
	return cpu.GetPC() - 4
}
