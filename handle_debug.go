//go:build windows && npipedebug

package npipe

import "sync/atomic"

// handleDebugInfo tags a Handle with a monotonically increasing id so leak
// reports can name individual handles. Compiled out entirely in release
// builds (see handle_release.go).
type handleDebugInfo struct {
	id int64
}

var (
	nextHandleID int64
	liveHandles  int64
)

func trackHandle() handleDebugInfo {
	id := atomic.AddInt64(&nextHandleID, 1)
	atomic.AddInt64(&liveHandles, 1)
	return handleDebugInfo{id: id}
}

func untrackHandle(handleDebugInfo) {
	atomic.AddInt64(&liveHandles, -1)
}

// LiveHandles returns the number of Handle values that have been created
// and not yet closed. Only tracked in builds tagged "npipedebug"; see
// handle_release.go for the zero-overhead default.
func LiveHandles() int64 {
	return atomic.LoadInt64(&liveHandles)
}
