package vm

// Opcode enumerates the abstract instruction set the decoder can
// produce, per spec.md §3's "opcode tag (one of an enumerated set
// covering the supported ARMv7 ISA)".
type Opcode int

const (
	OpInvalid Opcode = iota

	// Data-processing family, spec.md §4.7.
	OpADC
	OpADD
	OpAND
	OpASR
	OpBIC
	OpEOR
	OpLSL
	OpLSR
	OpMOV
	OpMUL
	OpMVN
	OpORN
	OpORR
	OpROR
	OpRRX
	OpRSB
	OpRSC
	OpSBC
	OpSUB

	// Compare/test family.
	OpCMN
	OpCMP
	OpTST
	OpTEQ

	// Branch family.
	OpB
	OpBL
	OpBLX
	OpBLXReg
	OpBX
	OpCBZ
	OpCBNZ
	OpTBB
	OpTBH

	// Bitfield ops.
	OpBFC
	OpBFI
	OpSBFX
	OpUBFX
	OpCLZ
	OpRBIT
	OpREV
	OpREV16
	OpREVSH

	// Multi-register memory.
	OpLDM
	OpSTM
	OpPUSH
	OpPOP

	// Single load/store.
	OpLDR
	OpLDRB
	OpLDRH
	OpLDRSB
	OpLDRSH
	OpSTR
	OpSTRB
	OpSTRH
	OpLDRD
	OpSTRD
	OpSWP
	OpSWPB

	// Parallel arithmetic.
	OpSADD16
	OpSADD8
	OpSSUB16
	OpSSUB8
	OpSASX
	OpSSAX
	OpUADD16
	OpUADD8
	OpUSUB16
	OpUSUB8
	OpUASX
	OpUSAX
	OpSHADD16
	OpSHADD8
	OpSHSUB16
	OpSHSUB8
	OpUHADD16
	OpUHADD8
	OpUHSUB16
	OpUHSUB8

	// Multiply/accumulate.
	OpMLA
	OpMLS
	OpSMULL
	OpUMULL
	OpSMLAL
	OpUMLAL
	OpUMAAL
	OpSMLABB
	OpSMULBB
	OpSMLAWB
	OpSMULWB
	OpSMUAD
	OpSMUSD
	OpSMLAD
	OpSMLSD
	OpSMLALD
	OpSMLSLD
	OpSMMUL
	OpSMMLA
	OpSMMLS

	// Extension/extract.
	OpSXTB
	OpSXTH
	OpSXTB16
	OpUXTB
	OpUXTH
	OpUXTB16
	OpSXTAB
	OpSXTAB16
	OpSXTAH
	OpUXTAB
	OpUXTAB16
	OpUXTAH

	OpSEL
	OpUSAD8
	OpUSADA8

	OpIT
	OpBKPT

	// MRS/MSR.
	OpMRS
	OpMSR

	// A single placeholder tag for the unimplemented-by-design opcodes
	// (§4.7's list). The decoder does not produce it: it reports those
	// encodings as ErrUnimplemented errors that name the instruction,
	// rather than degrading straight to ErrDecode.
	OpUnimplementedFamily
)
