package vm

import "fmt"

// Execute performs the decoded instruction's side effects on cpu and mem,
// per spec.md §4.7-§4.8. It implements the condition-passed gate and
// IT-block bookkeeping common to every opcode, then dispatches to the
// per-family handler.
//
// BKPT and CBZ/CBNZ execute unconditionally (CBZ/CBNZ has no condition
// field at all; BKPT is defined to trap regardless of condition), per
// spec.md §4.7's notes on those two opcodes.
func Execute(cpu *CPU, mem *Memory, inst *Instruction) error {
	unconditional := inst.Op == OpBKPT || inst.Op == OpCBZ || inst.Op == OpCBNZ || inst.Op == OpIT
	if !unconditional && !cpu.ConditionPassed(currentCondition(cpu, inst)) {
		if cpu.InIT() {
			cpu.AdvanceIT()
		}
		return nil
	}

	var err error
	switch {
	case isDataProcOp(inst.Op):
		err = execDataProcessing(cpu, inst)
	case isCompareOp(inst.Op):
		err = execCompare(cpu, inst)
	case isBranchOp(inst.Op):
		err = execBranch(cpu, mem, inst)
	case isBitfieldOp(inst.Op):
		err = execBitfield(cpu, inst)
	case inst.Op == OpLDM || inst.Op == OpSTM || inst.Op == OpPUSH || inst.Op == OpPOP:
		err = execBlockMemory(cpu, mem, inst)
	case isSingleMemOp(inst.Op):
		err = execSingleMemory(cpu, mem, inst)
	case isParallelOp(inst.Op):
		err = execParallel(cpu, inst)
	case isMultiplyOp(inst.Op):
		err = execMultiply(cpu, inst)
	case isExtendOp(inst.Op):
		err = execExtend(cpu, inst)
	case inst.Op == OpSEL:
		err = execSEL(cpu, inst)
	case inst.Op == OpUSAD8 || inst.Op == OpUSADA8:
		err = execUSAD(cpu, inst)
	case inst.Op == OpIT:
		err = execIT(cpu, inst)
	case inst.Op == OpBKPT:
		err = fmt.Errorf("%w: BKPT", ErrUnimplemented)
	case inst.Op == OpMRS:
		err = execMRS(cpu, inst)
	case inst.Op == OpMSR:
		err = execMSR(cpu, inst)
	default:
		err = fmt.Errorf("%w: opcode %d", ErrUnimplemented, inst.Op)
	}
	if err != nil {
		return err
	}

	if cpu.InIT() && inst.Op != OpIT {
		cpu.AdvanceIT()
	}
	return nil
}

// currentCondition returns the condition that actually gates inst: its
// own Condition field, unless cpu is inside an IT block, in which case
// the governing condition is ITSTATE<7:4> per spec.md §4.7. The Thumb
// decoder stamps CondAL on every 16-bit instruction other than B<cond>
// and IT (the other Thumb-1 encodings carry no condition field of their
// own), so this is the only place
// that condition is ever corrected back to what IT actually demands.
func currentCondition(cpu *CPU, inst *Instruction) ConditionCode {
	if cpu.InIT() {
		return ConditionCode(cpu.ITState() >> 4)
	}
	return inst.Condition
}

func isDataProcOp(op Opcode) bool {
	switch op {
	case OpADC, OpADD, OpAND, OpASR, OpBIC, OpEOR, OpLSL, OpLSR, OpMOV, OpMVN,
		OpORN, OpORR, OpROR, OpRRX, OpRSB, OpRSC, OpSBC, OpSUB:
		return true
	}
	return false
}

func isCompareOp(op Opcode) bool {
	switch op {
	case OpCMN, OpCMP, OpTST, OpTEQ:
		return true
	}
	return false
}

func isBranchOp(op Opcode) bool {
	switch op {
	case OpB, OpBL, OpBLX, OpBLXReg, OpBX, OpCBZ, OpCBNZ, OpTBB, OpTBH:
		return true
	}
	return false
}

func isBitfieldOp(op Opcode) bool {
	switch op {
	case OpBFC, OpBFI, OpSBFX, OpUBFX, OpCLZ, OpRBIT, OpREV, OpREV16, OpREVSH:
		return true
	}
	return false
}

func isSingleMemOp(op Opcode) bool {
	switch op {
	case OpLDR, OpLDRB, OpLDRH, OpLDRSB, OpLDRSH, OpSTR, OpSTRB, OpSTRH, OpLDRD, OpSTRD, OpSWP, OpSWPB:
		return true
	}
	return false
}

func isParallelOp(op Opcode) bool {
	switch op {
	case OpSADD16, OpSADD8, OpSSUB16, OpSSUB8, OpSASX, OpSSAX,
		OpUADD16, OpUADD8, OpUSUB16, OpUSUB8, OpUASX, OpUSAX,
		OpSHADD16, OpSHADD8, OpSHSUB16, OpSHSUB8, OpUHADD16, OpUHADD8, OpUHSUB16, OpUHSUB8:
		return true
	}
	return false
}

func isMultiplyOp(op Opcode) bool {
	switch op {
	case OpMUL, OpMLA, OpMLS, OpSMULL, OpUMULL, OpSMLAL, OpUMLAL, OpUMAAL,
		OpSMLABB, OpSMULBB, OpSMLAWB, OpSMULWB,
		OpSMUAD, OpSMUSD, OpSMLAD, OpSMLSD, OpSMLALD, OpSMLSLD,
		OpSMMUL, OpSMMLA, OpSMMLS:
		return true
	}
	return false
}

func isExtendOp(op Opcode) bool {
	switch op {
	case OpSXTB, OpSXTH, OpSXTB16, OpUXTB, OpUXTH, OpUXTB16,
		OpSXTAB, OpSXTAB16, OpSXTAH, OpUXTAB, OpUXTAB16, OpUXTAH:
		return true
	}
	return false
}

// writePC performs the alu_write_pc discipline of spec.md §4.4: a plain
// data-processing write to PC interworks in ARM state (delegating to
// bx_write_pc, since ARMv7 ALU writes to PC test bit 0 the same as BX),
// and branches halfword-aligned (bit 0 cleared) in Thumb state.
func writePC(cpu *CPU, target uint32) error {
	if cpu.ISetState() == ISetARM {
		return bxWritePC(cpu, target)
	}
	cpu.SetRegister(PC, target&^0x1)
	return nil
}

// branchWritePC implements branch_write_pc: used by B/BL and any
// non-interworking branch. Unlike writePC, this never interworks —
// Jazelle/ThumbEE targets are unimplemented, so it just re-aligns to
// the current instruction set's width.
func branchWritePC(cpu *CPU, target uint32) {
	if cpu.ISetState() == ISetARM {
		target &^= 0x3
	} else {
		target &^= 0x1
	}
	cpu.SetRegister(PC, target)
}

// bxWritePC implements bx_write_pc: interworking branches (BX, BLX) test
// bit 0 of the target to select ARM/Thumb state, per spec.md §4.4.
func bxWritePC(cpu *CPU, target uint32) error {
	thumb := target&0x1 != 0
	if err := cpu.SelectInstrSet(boolToISet(thumb)); err != nil {
		return err
	}
	cpu.SetRegister(PC, target&^0x1)
	return nil
}

func boolToISet(thumb bool) InstructionSet {
	if thumb {
		return ISetThumb
	}
	return ISetARM
}

// loadWritePC implements load_write_pc: LDR/POP/LDM writing PC always
// interwork in ARMv7, mirroring bx_write_pc.
func loadWritePC(cpu *CPU, target uint32) error { return bxWritePC(cpu, target) }
