package vm

import "fmt"

// Cursor is the fetch-stream reader the decoder consumes, per spec.md
// §4.5: next_byte/next_n/mark/offset_from_mark over the Memory
// component. The decoder never mutates CPU state except through the
// cursor's implicit PC advance (applied by the caller after decode).
type Cursor struct {
	mem  *Memory
	pos  uint32
	mark uint32
}

// NewCursor creates a cursor positioned at addr.
func NewCursor(mem *Memory, addr uint32) *Cursor {
	return &Cursor{mem: mem, pos: addr, mark: addr}
}

// NextByte reads and advances past one byte.
func (cu *Cursor) NextByte() (byte, error) {
	b, err := cu.mem.ReadByte(cu.pos)
	if err != nil {
		return 0, err
	}
	cu.pos++
	return b, nil
}

// NextN reads len(buf) bytes into buf and advances.
func (cu *Cursor) NextN(buf []byte) error {
	for i := range buf {
		b, err := cu.NextByte()
		if err != nil {
			return err
		}
		buf[i] = b
	}
	return nil
}

// Mark records the current position as the new mark.
func (cu *Cursor) Mark() { cu.mark = cu.pos }

// OffsetFromMark returns how many bytes have been consumed since Mark.
func (cu *Cursor) OffsetFromMark() uint32 { return cu.pos - cu.mark }

// Pos returns the cursor's current address.
func (cu *Cursor) Pos() uint32 { return cu.pos }

// Decode fetches and decodes the next instruction at addr according to
// the CPU's current ISETSTATE, per spec.md §4.5. It returns the decoded
// Instruction and the number of encoded bytes consumed (2 or 4) so the
// caller can advance PC per the fetch/run loop's PC-pre-advance
// invariant (spec.md §3 invariant 1).
func Decode(mem *Memory, cpu *CPU, addr uint32) (*Instruction, uint32, error) {
	cu := NewCursor(mem, addr)
	cu.Mark()

	switch cpu.ISetState() {
	case ISetARM:
		inst, err := decodeARM(cu)
		if err != nil {
			return nil, 0, err
		}
		inst.Address = addr
		return inst, cu.OffsetFromMark(), nil
	case ISetThumb:
		inst, err := decodeThumb(cu, cpu)
		if err != nil {
			return nil, 0, err
		}
		inst.Address = addr
		inst.Thumb = true
		return inst, cu.OffsetFromMark(), nil
	default:
		return nil, 0, fmt.Errorf("%w: Jazelle/ThumbEE decode", ErrUnimplemented)
	}
}

// ARMExpandImm implements spec.md §4.5's ARM-expand-imm(imm12): the low
// 8 bits are the unrotated value, rotated right by 2*imm12[11:8].
func ARMExpandImm(imm12 uint32, carryIn bool) (uint32, bool) {
	imm8 := imm12 & 0xFF
	rotation := ((imm12 >> 8) & 0xF) * 2
	if rotation == 0 {
		return imm8, carryIn
	}
	return ROR(imm8, uint(rotation))
}

// ThumbExpandImm implements spec.md §4.5's Thumb-expand-imm(i:imm3:imm8):
// the 12-bit field is i(1):imm3(3):imm8(8). If the top two bits of
// i:imm3 (i.e. i and imm3's own top bit) are both 0, imm3's low two bits
// select one of four 32-bit replication patterns over imm8; otherwise
// the field encodes (1<<7|imm8[6:0]) rotated right by the 5-bit value
// i:imm3:imm8[7].
func ThumbExpandImm(i, imm3, imm8 uint32, carryIn bool) (uint32, bool) {
	imm3 &= 0x7
	imm8 &= 0xFF
	topTwo := (i << 1) | (imm3 >> 2)
	if topTwo == 0 {
		switch imm3 & 0b011 {
		case 0b00:
			return imm8, carryIn
		case 0b01:
			return imm8<<16 | imm8, carryIn
		case 0b10:
			return imm8<<24 | imm8<<8, carryIn
		default:
			return imm8<<24 | imm8<<16 | imm8<<8 | imm8, carryIn
		}
	}

	unrotated := uint32(1<<7) | (imm8 & 0x7F)
	rotate := (i << 4) | (imm3 << 1) | (imm8 >> 7)
	return ROR(unrotated, uint(rotate))
}
