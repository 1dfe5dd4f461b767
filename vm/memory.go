package vm

import (
	"fmt"
)

// RemoteLink is the subset of *transport.Link the memory component
// needs, so tests can substitute a fake without a real byte stream.
type RemoteLink interface {
	ReadByte(offset uint32) (byte, error)
	WriteByte(offset uint32, v byte) error
}

// Memory is the flat, 32-bit-addressable byte array of spec.md §3: a
// local array backs the low addresses, and a RemoteLink backs the
// extension region above it. Carried from the teacher's vm/memory.go
// (ReadByte/WriteByte/ReadHalfword/ReadWord with little-endian packing),
// replacing its four fixed code/data/heap/stack segments — an
// ARM2-assembler convention with no counterpart here — with the
// two-region local/remote split spec.md §3 and §6 require.
type Memory struct {
	local      []byte
	localSize  uint32
	remoteSize uint32
	remote     RemoteLink

	AccessCount, ReadCount, WriteCount uint64
}

// NewMemory creates a Memory with localSize bytes of on-chip RAM
// (zero-initialized) and remoteSize bytes served through remote. remote
// may be nil if remoteSize is 0.
func NewMemory(localSize, remoteSize uint32, remote RemoteLink) *Memory {
	return &Memory{
		local:      make([]byte, localSize),
		localSize:  localSize,
		remoteSize: remoteSize,
		remote:     remote,
	}
}

// Len returns the total addressable length L = L_local + L_remote.
func (m *Memory) Len() uint32 { return m.localSize + m.remoteSize }

// ReadByte reads one byte, routing to the local array or the remote link
// depending on which region addr falls in, per spec.md §3/§4.3.
func (m *Memory) ReadByte(addr uint32) (byte, error) {
	m.AccessCount++
	m.ReadCount++
	if addr < m.localSize {
		return m.local[addr], nil
	}
	if addr < m.localSize+m.remoteSize {
		if m.remote == nil {
			return 0, fmt.Errorf("%w: remote region unattached at 0x%08X", ErrBus, addr)
		}
		b, err := m.remote.ReadByte(addr - m.localSize)
		if err != nil {
			return 0, fmt.Errorf("%w: remote read at 0x%08X: %v", ErrBus, addr, err)
		}
		return b, nil
	}
	return 0, fmt.Errorf("%w: address 0x%08X out of range (L=0x%08X)", ErrBus, addr, m.Len())
}

// WriteByte writes one byte, routed the same way as ReadByte.
func (m *Memory) WriteByte(addr uint32, v byte) error {
	m.AccessCount++
	m.WriteCount++
	if addr < m.localSize {
		m.local[addr] = v
		return nil
	}
	if addr < m.localSize+m.remoteSize {
		if m.remote == nil {
			return fmt.Errorf("%w: remote region unattached at 0x%08X", ErrBus, addr)
		}
		if err := m.remote.WriteByte(addr-m.localSize, v); err != nil {
			return fmt.Errorf("%w: remote write at 0x%08X: %v", ErrBus, addr, err)
		}
		return nil
	}
	return fmt.Errorf("%w: address 0x%08X out of range (L=0x%08X)", ErrBus, addr, m.Len())
}

// ReadHalfword reads a 16-bit little-endian value, composing two byte
// reads per spec.md §4.3 (a split-range boundary may be crossed; each
// byte is routed independently).
func (m *Memory) ReadHalfword(addr uint32) (uint16, error) {
	lo, err := m.ReadByte(addr)
	if err != nil {
		return 0, err
	}
	hi, err := m.ReadByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// WriteHalfword writes a 16-bit little-endian value.
func (m *Memory) WriteHalfword(addr uint32, v uint16) error {
	if err := m.WriteByte(addr, byte(v)); err != nil {
		return err
	}
	return m.WriteByte(addr+1, byte(v>>8))
}

// ReadWord reads a 32-bit little-endian value.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	var result uint32
	for i := uint32(0); i < 4; i++ {
		b, err := m.ReadByte(addr + i)
		if err != nil {
			return 0, err
		}
		result |= uint32(b) << (8 * i)
	}
	return result, nil
}

// WriteWord writes a 32-bit little-endian value.
func (m *Memory) WriteWord(addr uint32, v uint32) error {
	for i := uint32(0); i < 4; i++ {
		if err := m.WriteByte(addr+i, byte(v>>(8*i))); err != nil {
			return err
		}
	}
	return nil
}

// LoadImage writes a test image into local memory starting at address
// 0, the "test-image loading" feature of spec.md §6.
func (m *Memory) LoadImage(image []byte) error {
	if uint32(len(image)) > m.localSize {
		return fmt.Errorf("%w: image of %d bytes exceeds local memory of %d bytes", ErrBus, len(image), m.localSize)
	}
	copy(m.local, image)
	return nil
}
