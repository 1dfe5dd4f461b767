package vm

import "fmt"

// decodeThumb2 decodes the second halfword of a 32-bit Thumb-2
// instruction whose first halfword (hw1) has already signalled a wide
// encoding. It covers the subset of spec.md §4.7's opcode table that has
// a Thumb-2 wide form: data-processing (register and modified-immediate),
// load/store with an immediate or PC-relative offset (register-offset
// encodings are not recognized as such), TBB/TBH, load/store multiple,
// and branch/branch-with-link.
func decodeThumb2(cu *Cursor, hw1 uint16) (*Instruction, error) {
	var buf [2]byte
	if err := cu.NextN(buf[:]); err != nil {
		return nil, err
	}
	hw2 := uint16(buf[0]) | uint16(buf[1])<<8

	inst := &Instruction{Condition: CondAL, Wide: true, Encoding: uint32(hw1)<<16 | uint32(hw2)}

	op1 := (hw1 >> 11) & 0x3 // bits 12:11 of the full 32-bit word
	op2 := (hw1 >> 4) & 0x7F

	switch {
	case op1 == 0b10 && op2&0x20 == 0 && hw2&0x8000 != 0:
		return decodeThumb2BranchLink(inst, hw1, hw2)
	case op1 == 0b10 && op2&0x40 == 0:
		return decodeThumb2DataModImm(inst, hw1, hw2)
	case op1 == 0b01 && op2&0x40 != 0:
		return decodeThumb2LoadStore(inst, hw1, hw2)
	case op1 == 0b01 && op2&0x20 != 0:
		return decodeThumb2DataProcReg(inst, hw1, hw2)
	case op1 == 0b01 && op2 == 0b0001101 && hw2&0xFFE0 == 0xF000:
		return decodeThumb2TableBranch(inst, hw1, hw2)
	case op1 == 0b01 && op2&0x70 == 0b0000000:
		return decodeThumb2LoadStoreMultiple(inst, hw1, hw2)
	}

	return nil, fmt.Errorf("%w: thumb-2 encoding 0x%04X%04X", ErrDecode, hw1, hw2)
}

func decodeThumb2DataModImm(inst *Instruction, hw1, hw2 uint16) (*Instruction, error) {
	opBits := (hw1 >> 5) & 0xF
	setFlags := (hw1>>4)&1 != 0
	n := int(hw1 & 0xF)
	i := uint32((hw1 >> 10) & 0x1)
	imm3 := uint32((hw2 >> 12) & 0x7)
	d := int((hw2 >> 8) & 0xF)
	imm8 := uint32(hw2 & 0xFF)

	table := [16]Opcode{
		OpAND, OpBIC, OpORR, OpORN, OpEOR, OpInvalid, OpInvalid, OpInvalid,
		OpADD, OpInvalid, OpADC, OpSBC, OpInvalid, OpSUB, OpRSB, OpInvalid,
	}
	if n == 0xF {
		switch opBits {
		case 0b0010:
			inst.Op = OpMOV
		case 0b0011:
			inst.Op = OpMVN
		}
	}
	if inst.Op == OpInvalid {
		inst.Op = table[opBits]
	}
	if inst.Op == OpInvalid {
		return nil, fmt.Errorf("%w: thumb-2 modified-immediate opBits=%d", ErrUnimplemented, opBits)
	}

	inst.SetFlags = setFlags
	switch inst.Op {
	case OpTST, OpTEQ, OpCMP, OpCMN:
		inst.Operands[0] = Reg(n)
	case OpMOV, OpMVN:
		inst.Operands[0] = Reg(d)
	default:
		inst.Operands[0] = Reg(d)
		inst.Operands[1] = Reg(n)
	}

	imm := uint32(i)<<11 | imm3<<8 | imm8
	val := Imm32(imm) // carry computed by executor via ThumbExpandImm, mirroring ARMExpandImm's deferral
	switch inst.Op {
	case OpMOV, OpMVN:
		inst.Operands[1] = val
	default:
		inst.Operands[2] = val
	}
	return inst, nil
}

func decodeThumb2DataProcReg(inst *Instruction, hw1, hw2 uint16) (*Instruction, error) {
	opBits := (hw1 >> 5) & 0xF
	n := int(hw1 & 0xF)
	d := int((hw2 >> 8) & 0xF)
	m := int(hw2 & 0xF)
	imm := uint((hw2>>12)&0x7)<<2 | uint((hw2>>6)&0x3)
	typ := ShiftType((hw2 >> 4) & 0x3)

	table := [16]Opcode{
		OpAND, OpBIC, OpORR, OpORN, OpEOR, OpInvalid, OpInvalid, OpInvalid,
		OpADD, OpInvalid, OpADC, OpSBC, OpInvalid, OpSUB, OpRSB, OpInvalid,
	}
	inst.Op = table[opBits]
	if inst.Op == OpInvalid {
		return nil, fmt.Errorf("%w: thumb-2 register data-proc opBits=%d", ErrUnimplemented, opBits)
	}
	inst.SetFlags = (hw1>>4)&1 != 0
	inst.Operands[0] = Reg(d)
	inst.Operands[1] = Reg(n)
	inst.Operands[2] = RegWithShift(m, ImmShift(typ, imm))
	return inst, nil
}

func decodeThumb2LoadStore(inst *Instruction, hw1, hw2 uint16) (*Instruction, error) {
	size := (hw1 >> 5) & 0x3
	loadBit := (hw1>>4)&1 != 0
	n := int(hw1 & 0xF)
	t := int((hw2 >> 12) & 0xF)

	var table = map[[2]uint16]Opcode{
		{0, 0}: OpSTRB, {0, 1}: OpLDRB,
		{1, 0}: OpSTRH, {1, 1}: OpLDRH,
		{2, 0}: OpSTR, {2, 1}: OpLDR,
	}
	op, ok := table[[2]uint16{size, boolToU16(loadBit)}]
	if !ok {
		return nil, fmt.Errorf("%w: thumb-2 load/store size=%d", ErrUnimplemented, size)
	}
	inst.Op = op
	inst.Operands[0] = Reg(t)

	if n == 0xF {
		// PC-relative literal form.
		offset := int32(hw2 & 0xFFF)
		if hw1&0x0080 == 0 {
			offset = -offset
		}
		inst.Operands[1] = Mem(MemOperand{Mode: AddrDeref, Base: PC, OffKind: OffsetImm, OffImm: uint32(offset), Add: offset >= 0})
		return inst, nil
	}

	if hw2&0x0800 != 0 {
		// 12-bit unsigned immediate, always add, offset addressing.
		imm := uint32(hw2 & 0xFFF)
		inst.Operands[1] = Mem(MemOperand{Mode: AddrDeref, Base: n, OffKind: OffsetImm, OffImm: imm, Add: true})
		return inst, nil
	}

	// T3-style 8-bit signed immediate with P/U/W control bits.
	p := hw2&0x0400 != 0
	u := hw2&0x0200 != 0
	w := hw2&0x0100 != 0
	imm := uint32(hw2 & 0xFF)
	mode := AddrPreIndexed
	if !p {
		mode = AddrPostIndexed
	}
	inst.Operands[1] = Mem(MemOperand{Mode: mode, Base: n, OffKind: OffsetImm, OffImm: imm, Add: u, Writeback: w})
	return inst, nil
}

// decodeThumb2TableBranch decodes TBB/TBH: 111010001101 Rn 1111000000H Rm,
// per spec.md §4.7's branch family.
func decodeThumb2TableBranch(inst *Instruction, hw1, hw2 uint16) (*Instruction, error) {
	n := int(hw1 & 0xF)
	m := int(hw2 & 0xF)
	halfword := hw2&0x10 != 0

	inst.Op = OpTBB
	if halfword {
		inst.Op = OpTBH
	}
	inst.Operands[0] = Reg(n)
	inst.Operands[1] = Reg(m)
	return inst, nil
}

func decodeThumb2LoadStoreMultiple(inst *Instruction, hw1, hw2 uint16) (*Instruction, error) {
	loadBit := (hw1>>4)&1 != 0
	wBack := (hw1>>5)&1 != 0
	n := int(hw1 & 0xF)

	inst.Op = OpSTM
	if loadBit {
		inst.Op = OpLDM
	}
	inst.Operands[0] = Reg(n)
	inst.Operands[1] = RegList(hw2)
	inst.Accumulate = wBack
	return inst, nil
}

func decodeThumb2BranchLink(inst *Instruction, hw1, hw2 uint16) (*Instruction, error) {
	s := uint32((hw1 >> 10) & 0x1)
	imm10 := uint32(hw1 & 0x3FF)
	j1 := uint32((hw2 >> 13) & 0x1)
	j2 := uint32((hw2 >> 11) & 0x1)
	imm11 := uint32(hw2 & 0x7FF)

	i1 := 1 - (j1 ^ s)
	i2 := 1 - (j2 ^ s)

	offset := s<<24 | i1<<23 | i2<<22 | imm10<<12 | imm11<<1
	signed := signExtend(offset, 25)

	inst.Op = OpBL
	if hw2&0x5000 == 0x1000 {
		inst.Op = OpB // B.W: same offset layout as BL, with bit 14 clear
	}
	inst.Operands[0] = BranchOffset(uint32(signed))
	return inst, nil
}

func boolToU16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
