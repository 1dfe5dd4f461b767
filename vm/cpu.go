package vm

// CPU holds the architectural register file and program status, carried
// from the teacher's vm/cpu.go CPU struct and generalized from ARM2's
// four-flag CPSR to the full ARMv7 bitfield word spec.md §3 requires.
type CPU struct {
	// R holds all 16 general purpose registers; R[13]/R[14]/R[15] are
	// aliased as SP/LR/PC. Unlike the teacher (which keeps PC in a
	// separate field), PC lives in the same array so register-list
	// operations (LDM/STM, register writes) index it uniformly.
	R [16]uint32

	CPSR uint32
	SPSR uint32

	// ITBlockRemaining tracks the IT-block state machine of §4.7: 0 means
	// OutOfIT, 1..4 is the number of instructions (including the
	// current one) still governed by the IT-derived condition.
	ITBlockRemaining int

	Cycles uint64
}

// NewCPU creates a CPU in the reset state spec.md §3 describes:
// supervisor mode, A/I/F masked, T=J=E=0 (ARM, little-endian), all
// registers zero.
func NewCPU() *CPU {
	c := &CPU{}
	c.Reset()
	return c
}

// Reset restores the lifecycle initial state of §3.
func (c *CPU) Reset() {
	for i := range c.R {
		c.R[i] = 0
	}
	c.CPSR = 0
	c.SPSR = 0
	c.ITBlockRemaining = 0
	c.Cycles = 0

	apsr := APSR{}
	c.SetAPSR(apsr)
	c.setMode(ModeSupervisor)
	c.setMaskBit(bitA, true)
	c.setMaskBit(bitI, true)
	c.setMaskBit(bitF, true)
	c.SelectInstrSet(ISetARM) //nolint:errcheck // ARM is always selectable
}

// GetRegister reads register i (0..15).
func (c *CPU) GetRegister(i int) uint32 { return c.R[i] }

// SetRegister writes register i. Writing R15 directly bypasses the PC
// write disciplines of §4.7 and must only be used by plumbing that is
// not itself an instruction's PC write (e.g. the fetch loop advancing
// PC past the opcode, or test setup).
func (c *CPU) SetRegister(i int, v uint32) { c.R[i] = v }

func (c *CPU) GetSP() uint32  { return c.R[SP] }
func (c *CPU) SetSP(v uint32) { c.R[SP] = v }
func (c *CPU) GetLR() uint32  { return c.R[LR] }
func (c *CPU) SetLR(v uint32) { c.R[LR] = v }
func (c *CPU) GetPC() uint32  { return c.R[PC] }

// InIT reports whether an IT block currently governs execution,
// mirroring the teacher's in_it_block() naming from spec.md §4.2.
func (c *CPU) InIT() bool { return c.ITBlockRemaining > 0 }

// AdvanceIT shifts the IT state one step after a governed instruction
// completes (spec.md §4.7's IT state machine): InIT(n)->InIT(n-1) for
// n>1, else OutOfIT.
func (c *CPU) AdvanceIT() {
	if c.ITBlockRemaining > 0 {
		c.ITBlockRemaining--
	}
	it := c.ITState()
	if it&0x7 == 0 {
		// ITSTATE<2:0> == 0: the block is exhausted, per spec.md §4.7's
		// IT-advance algorithm.
		it = 0
	} else {
		// Only ITSTATE<4:0> shifts; ITSTATE<7:5> (the top bits of
		// firstcond) stays put for the rest of the block.
		it = (it &^ 0x1F) | ((it << 1) & 0x1F)
	}
	c.SetITState(it)
}

// IncrementCycles advances the cycle counter, named after the teacher's
// IncrementCycles helper used from Step().
func (c *CPU) IncrementCycles(n uint64) { c.Cycles += n }
