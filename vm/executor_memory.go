package vm

import "fmt"

// resolveMemAddress computes the effective address and, if writeback is
// requested, the new base register value, per spec.md §3's addressing
// mode operand family.
func resolveMemAddress(cpu *CPU, m MemOperand) (effective uint32, writeback uint32) {
	base := cpu.GetRegister(m.Base)

	var offset uint32
	switch m.OffKind {
	case OffsetImm:
		offset = m.OffImm
	case OffsetReg:
		offset = cpu.GetRegister(m.OffReg)
	case OffsetRegShift:
		v := cpu.GetRegister(m.OffReg)
		offset, _ = ApplyShift(m.OffShift.Type, v, m.OffShift.Amount(cpu), cpu.APSR().C)
	}

	var offsetBase uint32
	if m.Add {
		offsetBase = base + offset
	} else {
		offsetBase = base - offset
	}

	switch m.Mode {
	case AddrPreIndexed:
		return offsetBase, offsetBase
	case AddrPostIndexed:
		return base, offsetBase
	default:
		return base, base
	}
}

// execSingleMemory implements LDR/LDRB/LDRH/LDRSB/LDRSH/STR/STRB/STRH/
// LDRD/STRD/SWP/SWPB, per spec.md §4.7's single load/store family.
func execSingleMemory(cpu *CPU, mem *Memory, inst *Instruction) error {
	t := inst.Operands[0].Reg

	if inst.Op == OpSWP || inst.Op == OpSWPB {
		addr := cpu.GetRegister(inst.Operands[2].Reg)
		m2 := cpu.GetRegister(inst.Operands[1].Reg)
		if inst.Op == OpSWPB {
			old, err := mem.ReadByte(addr)
			if err != nil {
				return err
			}
			if err := mem.WriteByte(addr, byte(m2)); err != nil {
				return err
			}
			cpu.SetRegister(t, uint32(old))
			return nil
		}
		old, err := mem.ReadWord(addr)
		if err != nil {
			return err
		}
		if err := mem.WriteWord(addr, m2); err != nil {
			return err
		}
		cpu.SetRegister(t, old)
		return nil
	}

	memOpnd := inst.Operands[1].Mem
	effective, newBase := resolveMemAddress(cpu, memOpnd)

	switch inst.Op {
	case OpLDR:
		v, err := mem.ReadWord(effective)
		if err != nil {
			return err
		}
		if t == PC {
			if err := loadWritePC(cpu, v); err != nil {
				return err
			}
		} else {
			cpu.SetRegister(t, v)
		}
	case OpLDRB:
		v, err := mem.ReadByte(effective)
		if err != nil {
			return err
		}
		cpu.SetRegister(t, uint32(v))
	case OpLDRH:
		v, err := mem.ReadHalfword(effective)
		if err != nil {
			return err
		}
		cpu.SetRegister(t, uint32(v))
	case OpLDRSB:
		v, err := mem.ReadByte(effective)
		if err != nil {
			return err
		}
		cpu.SetRegister(t, uint32(int32(int8(v))))
	case OpLDRSH:
		v, err := mem.ReadHalfword(effective)
		if err != nil {
			return err
		}
		cpu.SetRegister(t, uint32(int32(int16(v))))
	case OpLDRD:
		lo, err := mem.ReadWord(effective)
		if err != nil {
			return err
		}
		hi, err := mem.ReadWord(effective + 4)
		if err != nil {
			return err
		}
		cpu.SetRegister(t, lo)
		if t+1 <= PC {
			cpu.SetRegister(t+1, hi)
		}
	case OpSTR:
		if err := mem.WriteWord(effective, cpu.GetRegister(t)); err != nil {
			return err
		}
	case OpSTRB:
		if err := mem.WriteByte(effective, byte(cpu.GetRegister(t))); err != nil {
			return err
		}
	case OpSTRH:
		if err := mem.WriteHalfword(effective, uint16(cpu.GetRegister(t))); err != nil {
			return err
		}
	case OpSTRD:
		if err := mem.WriteWord(effective, cpu.GetRegister(t)); err != nil {
			return err
		}
		if t+1 <= PC {
			if err := mem.WriteWord(effective+4, cpu.GetRegister(t+1)); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: single memory opcode %d", ErrUnimplemented, inst.Op)
	}

	if memOpnd.Writeback {
		cpu.SetRegister(memOpnd.Base, newBase)
	}
	return nil
}

// execBlockMemory implements LDM/STM/PUSH/POP, per spec.md §4.7's
// multi-register memory family. Registers transfer in ascending register
// order regardless of addressing direction, per the architecture's LDM/
// STM definition.
func execBlockMemory(cpu *CPU, mem *Memory, inst *Instruction) error {
	var base int
	var list uint16
	ascending := true // IA by default; PUSH/POP pin their own direction below

	switch inst.Op {
	case OpPUSH:
		base = SP
		list = inst.Operands[0].List
		ascending = false // store order: STMDB
	case OpPOP:
		base = SP
		list = inst.Operands[0].List
		ascending = true // load order: LDMIA
	default:
		base = inst.Operands[0].Reg
		list = inst.Operands[1].List
		ascending = inst.Thumb || inst.Lsb != 0 // Lsb carries the U bit from the ARM decoder; Thumb always IA
	}

	n := BitCount(uint32(list))
	startAddr := cpu.GetRegister(base)
	var addr uint32
	if inst.Op == OpPUSH {
		addr = startAddr - uint32(n*4)
	} else if inst.Op == OpPOP {
		addr = startAddr
	} else if ascending {
		addr = startAddr
	} else {
		addr = startAddr - uint32(n*4)
	}

	load := inst.Op == OpLDM || inst.Op == OpPOP

	for r := 0; r < 16; r++ {
		if list&(1<<uint(r)) == 0 {
			continue
		}
		if load {
			v, err := mem.ReadWord(addr)
			if err != nil {
				return err
			}
			if r == PC {
				if err := loadWritePC(cpu, v); err != nil {
					return err
				}
			} else {
				cpu.SetRegister(r, v)
			}
		} else {
			if err := mem.WriteWord(addr, cpu.GetRegister(r)); err != nil {
				return err
			}
		}
		addr += 4
	}

	switch inst.Op {
	case OpPUSH:
		cpu.SetSP(startAddr - uint32(n*4))
	case OpPOP:
		cpu.SetSP(startAddr + uint32(n*4))
	default:
		if inst.Accumulate { // writeback (W bit)
			if ascending {
				cpu.SetRegister(base, startAddr+uint32(n*4))
			} else {
				cpu.SetRegister(base, startAddr-uint32(n*4))
			}
		}
	}
	return nil
}
