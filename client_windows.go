//go:build windows

package npipe

import (
	"context"

	"golang.org/x/sys/windows"
)

// Dial opens a connected pipe handle against an existing server name (spec
// §4.6). There is no PipeClient type: the spec calls this a "stateless
// factory," and a stateless factory with no fields is just a function in
// Go.
//
// Connecting is synchronous at this layer (spec §5): CreateFile either
// succeeds immediately or fails; there is no overlapped connect on the
// client side. ctx is honored only before the call is issued — once
// CreateFile is in flight it cannot be cancelled, matching the underlying
// Win32 semantics.
func Dial(ctx context.Context, name string) (*PipeConnection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr := pipeAddr(name)
	namePtr, err := windows.UTF16PtrFromString(string(addr))
	if err != nil {
		return nil, newPipeError("dial", string(addr), err)
	}

	h, err := windows.CreateFile(
		namePtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		return nil, newPipeError("dial", string(addr), err)
	}

	if err := getCompletionPort().associate(h); err != nil {
		windows.CloseHandle(h)
		return nil, newPipeError("dial", string(addr), err)
	}

	return &PipeConnection{handle: newHandle(h), addr: addr}, nil
}
