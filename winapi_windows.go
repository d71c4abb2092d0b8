//go:build windows

package npipe

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var modkernel32 = windows.NewLazyDLL("kernel32.dll")

// disconnectNamedPipe disconnects the server end of a named pipe instance
// from a client process.
// https://learn.microsoft.com/en-us/windows/win32/api/namedpipeapi/nf-namedpipeapi-disconnectnamedpipe
//
// golang.org/x/sys/windows does not expose this call directly, so it is
// resolved the same way the teacher package resolves it: a lazy DLL proc
// bound at first use.
func disconnectNamedPipe(handle windows.Handle) error {
	procDisconnectNamedPipe := modkernel32.NewProc("DisconnectNamedPipe")
	ret, _, err := procDisconnectNamedPipe.Call(uintptr(handle))
	if ret == 0 {
		return fmt.Errorf("DisconnectNamedPipe: %w", err)
	}
	return nil
}
