//go:build windows

package npipe

import (
	"sync"

	"golang.org/x/sys/windows"
)

// Handle owns exactly one kernel handle and releases it exactly once, on
// Close. It is safe to share across goroutines: its state changes only
// once, inside the sync.Once-guarded Close.
type Handle struct {
	once sync.Once
	h    windows.Handle

	dbg handleDebugInfo
}

// newHandle wraps a raw kernel handle. Ownership of h transfers to the
// returned Handle.
func newHandle(h windows.Handle) *Handle {
	hd := &Handle{h: h}
	hd.dbg = trackHandle()
	return hd
}

// Sys returns the raw kernel handle for use in syscalls. The returned value
// is only valid until Close is called.
func (h *Handle) Sys() windows.Handle { return h.h }

// Close releases the underlying kernel handle. It is safe to call more than
// once; only the first call has any effect, and its error, if any, is
// swallowed past that point since a repeated close carries no actionable
// information for the caller (mirroring the teacher's treatment of
// windows.CloseHandle's return value).
func (h *Handle) Close() error {
	var err error
	h.once.Do(func() {
		err = windows.CloseHandle(h.h)
		h.h = 0
		untrackHandle(h.dbg)
	})
	return err
}
