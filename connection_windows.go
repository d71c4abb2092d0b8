//go:build windows

package npipe

import (
	"golang.org/x/sys/windows"
)

// PipeConnection owns a connected pipe handle. Overlapped I/O permits
// concurrent reads and writes on the same handle, but each direction must
// be serialized by the caller (spec §5) — PipeConnection itself does not
// add locking beyond what's needed to protect the handle's lifetime.
type PipeConnection struct {
	handle *Handle
	addr   PipeAddr

	// serverEnd is true for a connection produced by PipeServer's
	// WaitForConnection and false for one produced by Dial. Only the
	// server end of a pipe instance can be disconnected from its client
	// (spec §4.4); Close uses this to decide whether to do so first.
	serverEnd bool
}

// Close closes the connection. For a connection accepted by a server, it
// first disconnects the pipe instance from its client, mirroring the
// teacher's listener close path, so the kernel tears down the client's
// view of the pipe before the handle itself is released.
func (c *PipeConnection) Close() error {
	if c.serverEnd {
		disconnectNamedPipe(c.handle.Sys())
	}
	return c.handle.Close()
}

// Addr returns the address of the pipe this connection was accepted from
// or dialed to.
func (c *PipeConnection) Addr() PipeAddr { return c.addr }

// Read implements spec §4.5: it loops over internalRead until a nonzero
// read or an error, so Read blocks until at least one byte is available,
// matching stream semantics even though a single kernel ReadFile call can
// legitimately report zero bytes transferred with "no data" pending.
func (c *PipeConnection) Read(buf []byte) (int, error) {
	for {
		n, err := c.internalRead(buf)
		if n != 0 || err != nil {
			return n, err
		}
	}
}

// internalRead issues exactly one kernel ReadFile call and interprets its
// result (spec §4.5).
func (c *PipeConnection) internalRead(buf []byte) (int, error) {
	op := newIOOperation()
	var n uint32
	err := windows.ReadFile(c.handle.Sys(), buf, &n, &op.o)
	switch err {
	case nil:
		return int(n), nil
	case windows.ERROR_IO_PENDING:
		bytes, err := op.await()
		if err != nil {
			return 0, newPipeError("read", string(c.addr), err)
		}
		return bytes, nil
	case windows.ERROR_NO_DATA:
		return 0, nil
	default:
		return 0, newPipeError("read", string(c.addr), err)
	}
}

// Write implements spec §4.5/§4.6: a single kernel WriteFile call, no
// retry loop (the framed layer above never issues a zero-length write).
func (c *PipeConnection) Write(buf []byte) (int, error) {
	op := newIOOperation()
	var n uint32
	err := windows.WriteFile(c.handle.Sys(), buf, &n, &op.o)
	switch err {
	case nil:
		return int(n), nil
	case windows.ERROR_IO_PENDING:
		bytes, err := op.await()
		if err != nil {
			return 0, newPipeError("write", string(c.addr), err)
		}
		return bytes, nil
	default:
		return 0, newPipeError("write", string(c.addr), err)
	}
}
