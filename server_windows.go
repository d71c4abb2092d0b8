//go:build windows

package npipe

import (
	"context"
	"sync/atomic"

	"golang.org/x/sys/windows"
)

// ServerOptions configures a PipeServer. The zero value is a reasonable
// default: the kernel chooses its own buffer sizes (spec §6).
type ServerOptions struct {
	// InBufferSize and OutBufferSize request kernel buffer sizes in bytes.
	// Zero lets the kernel choose.
	InBufferSize  uint32
	OutBufferSize uint32
}

// PipeServer owns one pipe instance in the listening state and the
// symbolic name it listens under. It is consumed by WaitForConnection,
// which returns the newly connected client along with a fresh PipeServer
// for the same name, preserving the invariant that exactly one server
// instance is listening per name at a time (spec §3).
type PipeServer struct {
	handle   *Handle
	addr     PipeAddr
	opts     ServerOptions
	consumed int32
}

// NewPipeServer creates the first instance of a named pipe and binds name.
// The pipe is created with the "first instance" and "reject remote
// clients" flags set — the latter always, as a security boundary (spec
// §4.4): this is a local-only IPC transport.
func NewPipeServer(name string, opts *ServerOptions) (*PipeServer, error) {
	o := ServerOptions{}
	if opts != nil {
		o = *opts
	}
	addr := pipeAddr(name)
	h, err := createServerPipe(addr, true, o)
	if err != nil {
		return nil, newPipeError("listen", string(addr), err)
	}
	if err := getCompletionPort().associate(h); err != nil {
		windows.CloseHandle(h)
		return nil, newPipeError("listen", string(addr), err)
	}
	return &PipeServer{handle: newHandle(h), addr: addr, opts: o}, nil
}

func createServerPipe(addr PipeAddr, first bool, opts ServerOptions) (windows.Handle, error) {
	namePtr, err := windows.UTF16PtrFromString(string(addr))
	if err != nil {
		return 0, err
	}

	openMode := uint32(windows.PIPE_ACCESS_DUPLEX | windows.FILE_FLAG_OVERLAPPED)
	if first {
		openMode |= windows.FILE_FLAG_FIRST_PIPE_INSTANCE
	}
	pipeMode := uint32(windows.PIPE_TYPE_BYTE | windows.PIPE_READMODE_BYTE | windows.PIPE_WAIT | windows.PIPE_REJECT_REMOTE_CLIENTS)

	return windows.CreateNamedPipe(
		namePtr,
		openMode,
		pipeMode,
		windows.PIPE_UNLIMITED_INSTANCES,
		opts.OutBufferSize,
		opts.InBufferSize,
		0, // default timeout: kernel picks 50ms
		nil,
	)
}

// WaitForConnection implements spec §4.4. It consumes the receiver: a
// PipeServer may produce at most one connection. Calling it a second time
// on the same value returns ErrListenerConsumed.
//
// ctx may be used to abandon an in-flight connect; this is a supplemented
// feature (see SPEC_FULL.md) not present in spec.md's pseudocode, added
// because an idiomatic Go accept loop needs a way to unblock on shutdown.
func (s *PipeServer) WaitForConnection(ctx context.Context) (*PipeConnection, *PipeServer, error) {
	if !atomic.CompareAndSwapInt32(&s.consumed, 0, 1) {
		return nil, nil, ErrListenerConsumed
	}

	// Manufacture the next listener's handle before waiting for this one's
	// client, so that while the caller services the newly connected
	// client, the name never has zero listeners (spec §4.4 step 2).
	nextHandle, err := createServerPipe(s.addr, false, s.opts)
	if err != nil {
		s.handle.Close()
		return nil, nil, newPipeError("accept", string(s.addr), err)
	}
	if err := getCompletionPort().associate(nextHandle); err != nil {
		windows.CloseHandle(nextHandle)
		s.handle.Close()
		return nil, nil, newPipeError("accept", string(s.addr), err)
	}
	next := &PipeServer{handle: newHandle(nextHandle), addr: s.addr, opts: s.opts}

	op := newIOOperation()
	err = windows.ConnectNamedPipe(s.handle.Sys(), &op.o)
	switch err {
	case nil:
		// Synchronous success.
		return &PipeConnection{handle: s.handle, addr: s.addr, serverEnd: true}, next, nil
	case windows.ERROR_PIPE_CONNECTED:
		// The client won the race between pipe creation and ConnectNamedPipe;
		// treat exactly like synchronous success (spec §4.4 step 4).
		return &PipeConnection{handle: s.handle, addr: s.addr, serverEnd: true}, next, nil
	case windows.ERROR_IO_PENDING:
		_, err = op.awaitContext(ctx, func() { windows.CancelIoEx(s.handle.Sys(), &op.o) })
		if err != nil {
			s.handle.Close()
			return nil, next, newPipeError("accept", string(s.addr), err)
		}
		return &PipeConnection{handle: s.handle, addr: s.addr, serverEnd: true}, next, nil
	default:
		s.handle.Close()
		return nil, next, newPipeError("accept", string(s.addr), err)
	}
}

// Close releases the pipe instance without waiting for a client. Callers
// that have already called WaitForConnection must not (and need not) call
// Close afterward: ownership of the handle has moved to the returned
// PipeConnection, which is what must be closed instead, or, when
// WaitForConnection returned an error, the handle has already been released.
func (s *PipeServer) Close() error {
	if s == nil || atomic.LoadInt32(&s.consumed) != 0 {
		return nil
	}
	return s.handle.Close()
}

// Addr returns the address the server is bound to.
func (s *PipeServer) Addr() PipeAddr {
	if s == nil {
		return ""
	}
	return s.addr
}
