//go:build windows

package npipe

import (
	"context"
	"encoding/binary"
)

// chunkSize bounds a single kernel call's transfer to 16 MiB (spec §4.7,
// §6): large messages move in a loop of calls this size or smaller.
const chunkSize = 1 << 24

// MessageServer wraps a PipeServer and adds length-prefixed framing on top
// of the connections it accepts. It holds no additional persistent state
// (spec §3).
type MessageServer struct {
	raw *PipeServer
}

// NewMessageServer creates the first instance of a framed named pipe.
func NewMessageServer(name string, opts *ServerOptions) (*MessageServer, error) {
	s, err := NewPipeServer(name, opts)
	if err != nil {
		return nil, err
	}
	return &MessageServer{raw: s}, nil
}

// WaitForConnection mirrors PipeServer.WaitForConnection, returning a framed
// connection and a fresh MessageServer for the same name.
func (s *MessageServer) WaitForConnection(ctx context.Context) (*MessageConnection, *MessageServer, error) {
	conn, next, err := s.raw.WaitForConnection(ctx)
	if err != nil {
		return nil, &MessageServer{raw: next}, err
	}
	return &MessageConnection{raw: conn}, &MessageServer{raw: next}, nil
}

// Close releases the server's pipe instance.
func (s *MessageServer) Close() error { return s.raw.Close() }

// Addr returns the address the server is bound to.
func (s *MessageServer) Addr() PipeAddr { return s.raw.Addr() }

// MessageConnection wraps a PipeConnection and adds the 8-byte
// little-endian length-prefixed framing from spec §4.7/§6. Writes are
// atomic at the frame level only if the caller serializes its own calls to
// WriteMessage — this layer assumes one logical writer per direction, same
// as the raw layer.
type MessageConnection struct {
	raw *PipeConnection
}

// Close closes the underlying connection.
func (c *MessageConnection) Close() error { return c.raw.Close() }

// Addr returns the address of the underlying connection.
func (c *MessageConnection) Addr() PipeAddr { return c.raw.Addr() }

// WriteMessage sends payload as one length-prefixed frame. A zero-length
// payload is deliberately suppressed and returns immediately without
// writing anything — an implementer who removes this guard deadlocks the
// peer's next ReadMessage (spec §4.7, §9).
func (c *MessageConnection) WriteMessage(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}

	var lengthPrefix [8]byte
	binary.LittleEndian.PutUint64(lengthPrefix[:], uint64(len(payload)))

	if err := writeAll(c.raw, lengthPrefix[:]); err != nil {
		return err
	}
	return writeAll(c.raw, payload)
}

// ReadMessage receives one length-prefixed frame and returns its payload.
// Any underlying I/O error aborts the current frame; the caller should
// close the connection (spec §4.7, §7).
func (c *MessageConnection) ReadMessage() ([]byte, error) {
	var lengthPrefix [8]byte
	if err := readAll(c.raw, lengthPrefix[:]); err != nil {
		return nil, err
	}

	n := binary.LittleEndian.Uint64(lengthPrefix[:])
	payload := make([]byte, n)
	if err := readAll(c.raw, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// writeAll sends buf across repeated raw writes, chunked at chunkSize,
// until every byte has been sent (spec §4.7).
func writeAll(conn *PipeConnection, buf []byte) error {
	for len(buf) > 0 {
		chunk := buf
		if len(chunk) > chunkSize {
			chunk = chunk[:chunkSize]
		}
		n, err := conn.Write(chunk)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// readAll receives len(buf) bytes across repeated raw reads, each at most
// chunkSize, until buf is full (spec §4.7).
func readAll(conn *PipeConnection, buf []byte) error {
	for len(buf) > 0 {
		chunk := buf
		if len(chunk) > chunkSize {
			chunk = chunk[:chunkSize]
		}
		n, err := conn.Read(chunk)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// DialMessage connects to a framed named pipe server by name.
func DialMessage(ctx context.Context, name string) (*MessageConnection, error) {
	conn, err := Dial(ctx, name)
	if err != nil {
		return nil, err
	}
	return &MessageConnection{raw: conn}, nil
}
