//go:build windows && !npipedebug

package npipe

// handleDebugInfo is empty in release builds: no per-handle id, no
// process-wide counter, zero overhead.
type handleDebugInfo struct{}

func trackHandle() handleDebugInfo  { return handleDebugInfo{} }
func untrackHandle(handleDebugInfo) {}

// LiveHandles always returns 0 in release builds. Build with
// "-tags npipedebug" to get real leak-detection counts.
func LiveHandles() int64 { return 0 }
