package vm

// Shift is the tagged shift-spec of spec.md §3: an operator with either
// an immediate amount or a register supplying the low 8 bits.
type Shift struct {
	Type      ShiftType
	Imm       uint
	Reg       int
	byRegister bool
}

func ImmShift(t ShiftType, amount uint) Shift { return Shift{Type: t, Imm: amount} }
func RegShift(t ShiftType, reg int) Shift     { return Shift{Type: t, Reg: reg, byRegister: true} }

// Amount resolves the shift amount against CPU state (reading the
// register's low 8 bits when the shift amount is register-sourced).
func (s Shift) Amount(c *CPU) uint {
	if s.byRegister {
		return uint(c.GetRegister(s.Reg) & 0xFF)
	}
	return s.Imm
}

// AddrMode tags the memory addressing-mode operand variants of spec.md
// §3.
type AddrMode int

const (
	AddrDeref AddrMode = iota
	AddrPreIndexed
	AddrPostIndexed
)

// OffsetKind tags how a memory operand's offset is expressed.
type OffsetKind int

const (
	OffsetImm OffsetKind = iota
	OffsetReg
	OffsetRegShift
)

// MemOperand is the addressing-mode operand family of spec.md §3:
// {RegDeref, RegDerefPreindexed{Imm|Reg|RegShift},
// RegDerefPostindexed{Imm|Reg|RegShift}}, each parameterized by a base
// register, an offset operand, an add/subtract sign, and a writeback
// flag.
type MemOperand struct {
	Mode       AddrMode
	Base       int
	OffKind    OffsetKind
	OffImm     uint32
	OffReg     int
	OffShift   Shift
	Add        bool
	Writeback  bool
}

// StatusRegKind tags which status-register operand variant is in play.
type StatusRegKind int

const (
	StatusAPSR StatusRegKind = iota
	StatusCPSR
	StatusSPSR
	StatusFieldMask
)

// StatusRegMask is the 4-bit {f,s,x,c} field-mask operand of spec.md
// §4.8.
type StatusRegMask struct {
	F, S, X, C bool
	WriteSPSR  bool
}

// OperandKind tags which variant an Operand holds.
type OperandKind int

const (
	OpNothing OperandKind = iota
	OpImmediate
	OpRegister
	OpRegisterShift
	OpRegisterWriteback
	OpRegisterList
	OpBranchOffset
	OpMemory
	OpStatusReg
	OpStatusFieldMask
)

// Operand is the tagged union of spec.md §3's operand variants. Only
// the fields relevant to Kind are meaningful; this mirrors the
// original's 31-variant enum (see SPEC_FULL.md) collapsed into one
// struct in the teacher's plain-data style rather than an interface
// hierarchy, since every opcode handler needs to read exactly one of a
// small number of shapes.
type Operand struct {
	Kind OperandKind

	Imm  uint32 // OpImmediate / OpBranchOffset (signed, stored as bit pattern)
	Reg  int     // OpRegister / OpRegisterShift / OpRegisterWriteback
	Sh   Shift   // OpRegisterShift
	List uint16  // OpRegisterList: bitmask of R0..R15

	Mem MemOperand // OpMemory

	Status     StatusRegKind
	FieldMask  StatusRegMask
}

func Imm32(v uint32) Operand           { return Operand{Kind: OpImmediate, Imm: v} }
func Reg(r int) Operand                { return Operand{Kind: OpRegister, Reg: r} }
func RegWithShift(r int, s Shift) Operand {
	return Operand{Kind: OpRegisterShift, Reg: r, Sh: s}
}
func RegList(mask uint16) Operand { return Operand{Kind: OpRegisterList, List: mask} }
func BranchOffset(v uint32) Operand { return Operand{Kind: OpBranchOffset, Imm: v} }
func Mem(m MemOperand) Operand      { return Operand{Kind: OpMemory, Mem: m} }

// Instruction is the decoded record of spec.md §3: opcode tag,
// condition, S-bit, and up to four typed operands.
type Instruction struct {
	Address   uint32
	Encoding  uint32 // raw fetched bits, for diagnostics
	Op        Opcode
	Condition ConditionCode
	SetFlags  bool
	Thumb     bool
	Wide      bool // true for 32-bit Thumb-2 encodings

	Operands [4]Operand

	// Extra fields used by a handful of opcode families that don't fit
	// the four-operand shape cleanly (bitfield lsb/msb, accumulate bit
	// for multiplies). Rotate is not set by any decoder and not read by
	// the extension ops.
	Lsb, Msb int
	Rotate   uint
	Accumulate bool
	WriteSPSRBit bool
	FieldMask  StatusRegMask // MSR's field mask (c/x/s/f), per spec.md §4.8
}
