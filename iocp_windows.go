//go:build windows

package npipe

import (
	"sync"

	"golang.org/x/sys/windows"
)

// completionPort is the process-wide singleton from spec §3/§4.3: one
// completion port, associated with every pipe handle before that handle
// issues overlapped I/O, serviced by exactly one dedicated watcher
// goroutine that does no application work.
//
// h is a *Handle, not a bare windows.Handle, so the completion port's own
// kernel handle is counted by the same debug-build leak tracking every
// other handle in this package goes through: spec §8's leak-check
// invariant states the live-handle baseline is "one, for the completion-
// port singleton," which only holds if the singleton is itself tracked.
type completionPort struct {
	h *Handle
}

var (
	portOnce sync.Once
	port     *completionPort
)

// getCompletionPort returns the process-wide completion port, creating it
// and its watcher goroutine on first use. The port is never destroyed: if
// it were, every overlapped operation in flight at that moment would leak
// its result forever, which is why watch panics instead of exiting when the
// kernel ever reports the port itself is gone.
func getCompletionPort() *completionPort {
	portOnce.Do(func() {
		h, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
		if err != nil {
			panic(err)
		}
		port = &completionPort{h: newHandle(h)}
		go watch(port)
	})
	return port
}

// associate binds h to the completion port and sets the flags that make
// the synchronous-success fast path possible: FILE_SKIP_COMPLETION_PORT_ON_SUCCESS
// means a call that completes inline never posts a redundant completion,
// and FILE_SKIP_SET_EVENT_ON_HANDLE means the kernel doesn't bother
// signalling h's own event object, which this design never waits on.
func (p *completionPort) associate(h windows.Handle) error {
	if _, err := windows.CreateIoCompletionPort(h, p.h.Sys(), 0, 0); err != nil {
		return err
	}
	return windows.SetFileCompletionNotificationModes(h,
		windows.FILE_SKIP_COMPLETION_PORT_ON_SUCCESS|windows.FILE_SKIP_SET_EVENT_ON_HANDLE)
}

// watch is the completion-port watcher thread. It never does application
// work: it only translates kernel completions into resolve calls on the
// ioOperation that issued them.
func watch(p *completionPort) {
	for {
		var bytes uint32
		var key uintptr
		var ov *windows.Overlapped
		err := windows.GetQueuedCompletionStatus(p.h.Sys(), &bytes, &key, &ov, windows.INFINITE)
		if ov == nil {
			// GetQueuedCompletionStatus timed out or the port handle itself is
			// invalid. With an INFINITE timeout the only way to get here with
			// a nil overlapped is a fatal misuse of the port; there is no
			// operation to resolve and nothing safe to do but stop.
			if err == windows.ERROR_ABANDONED_WAIT_0 {
				panic("npipe: completion port abandoned")
			}
			panic(err)
		}
		op := operationFromOverlapped(ov)
		op.resolve(overlappedResult{bytesTransferred: bytes, err: err})
	}
}
