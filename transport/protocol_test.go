package transport_test

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/lookbusy1344/armv7-vcpu/transport"
)

const (
	frameEnd   = 0xFF
	escapeByte = 0x5C
	readyByte  = 0xAA
	ackByte    = 0x55
)

// fakeHost plays the remote-memory side of the handshake: it expects a
// ready byte, acknowledges it, reads one escaped command frame, and
// answers READ_MEMORY commands with the byte at the requested offset
// (performing the same escaping the real protocol requires). It applies
// WRITE_MEMORY commands to mem and sends no reply, matching transport.Link.
func fakeHost(t *testing.T, conn net.Conn, mem map[uint32]byte) {
	t.Helper()
	buf := make([]byte, 1)
	if _, err := conn.Read(buf); err != nil {
		t.Errorf("fakeHost: read ready byte: %v", err)
		return
	}
	if buf[0] != readyByte {
		t.Errorf("fakeHost: ready byte = 0x%X; want 0x%X", buf[0], readyByte)
		return
	}
	if _, err := conn.Write([]byte{ackByte}); err != nil {
		t.Errorf("fakeHost: write ack: %v", err)
		return
	}

	var frame []byte
	for {
		if _, err := conn.Read(buf); err != nil {
			t.Errorf("fakeHost: read frame byte: %v", err)
			return
		}
		b := buf[0]
		if b == escapeByte {
			if _, err := conn.Read(buf); err != nil {
				t.Errorf("fakeHost: read escaped byte: %v", err)
				return
			}
			frame = append(frame, buf[0])
			continue
		}
		if b == frameEnd {
			break
		}
		frame = append(frame, b)
	}

	opcode := frame[0]
	offset := binary.LittleEndian.Uint32(frame[1:5])
	switch opcode {
	case transport.CmdReadMemory:
		v := mem[offset]
		resp := escapeOne(v)
		resp = append(resp, frameEnd)
		if _, err := conn.Write(resp); err != nil {
			t.Errorf("fakeHost: write response: %v", err)
		}
	case transport.CmdWriteMemory:
		mem[offset] = frame[5]
	default:
		t.Errorf("fakeHost: unknown opcode %d", opcode)
	}
}

func escapeOne(b byte) []byte {
	if b == frameEnd || b == escapeByte {
		return []byte{escapeByte, b}
	}
	return []byte{b}
}

func TestLinkReadByte(t *testing.T) {
	client, host := net.Pipe()
	defer client.Close()
	defer host.Close()

	mem := map[uint32]byte{42: 0x99}
	done := make(chan struct{})
	go func() {
		fakeHost(t, host, mem)
		close(done)
	}()

	link := transport.NewLink(client)
	v, err := link.ReadByte(42)
	<-done
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if v != 0x99 {
		t.Errorf("ReadByte(42) = 0x%X; want 0x99", v)
	}
}

func TestLinkReadByteEscapedValue(t *testing.T) {
	client, host := net.Pipe()
	defer client.Close()
	defer host.Close()

	mem := map[uint32]byte{7: frameEnd}
	done := make(chan struct{})
	go func() {
		fakeHost(t, host, mem)
		close(done)
	}()

	link := transport.NewLink(client)
	v, err := link.ReadByte(7)
	<-done
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if v != frameEnd {
		t.Errorf("ReadByte(7) = 0x%X; want 0x%X (frame terminator byte, escaped in transit)", v, frameEnd)
	}
}

func TestLinkWriteByte(t *testing.T) {
	client, host := net.Pipe()
	defer client.Close()
	defer host.Close()

	mem := map[uint32]byte{}
	done := make(chan struct{})
	go func() {
		fakeHost(t, host, mem)
		close(done)
	}()

	link := transport.NewLink(client)
	if err := link.WriteByte(100, escapeByte); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	<-done
	if got := mem[100]; got != escapeByte {
		t.Errorf("mem[100] = 0x%X; want 0x%X (escape byte value written through escaping)", got, escapeByte)
	}
}
