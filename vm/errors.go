package vm

import "errors"

// Sentinel error kinds, matched with errors.Is by callers that need to
// distinguish a bus fault from an unsupported opcode.
var (
	// ErrBus is returned for an out-of-range memory address or a
	// failure of the remote transport.
	ErrBus = errors.New("bus error")

	// ErrUnimplemented is returned for an opcode or addressing mode the
	// engine deliberately does not implement (coprocessor, security
	// extensions, floating point, SIMD, Jazelle/ThumbEE).
	ErrUnimplemented = errors.New("unimplemented")

	// ErrDecode is returned when no encoding matches the fetched bits.
	ErrDecode = errors.New("decode error")
)
