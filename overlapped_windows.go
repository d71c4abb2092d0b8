//go:build windows

package npipe

import (
	"context"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

// overlappedResult is what the watcher goroutine delivers once the kernel
// reports a completion: the raw error code and the byte count the kernel
// transferred.
type overlappedResult struct {
	bytesTransferred uint32
	err              error
}

// ioOperation is the overlapped context from spec §3/§4.2: a record whose
// first field is laid out exactly as the kernel's OVERLAPPED structure, so
// the kernel can write completion state into it, plus the producer half of
// a one-shot result channel.
//
// The allocation is handed to the kernel as an opaque *windows.Overlapped
// when an operation is issued; it must not move or be freed until exactly
// one of completion or the process exiting reclaims it. runtime.KeepAlive
// on the *ioOperation pins it for the goroutine's side of that contract;
// the kernel's side needs no pinning help since cgo/syscall arguments are
// already kept alive for the duration of the call, and completion delivery
// runs through the same pointer value, not a copy.
type ioOperation struct {
	o  windows.Overlapped
	ch chan overlappedResult
}

// newIOOperation allocates a zero-initialized overlapped context with its
// one-shot result channel. The channel has capacity 1 so the watcher
// goroutine's resolve never blocks on a slow or already-departed receiver.
func newIOOperation() *ioOperation {
	return &ioOperation{ch: make(chan overlappedResult, 1)}
}

// resolve is invoked only by the completion-port watcher goroutine, never
// by application code. It is a non-blocking send: the channel always has
// room (capacity 1, written exactly once), but the non-blocking form keeps
// the watcher loop from ever wedging even if that invariant is ever
// violated by a future bug — the watcher is the one piece of this design
// that must never stop servicing the completion port.
func (op *ioOperation) resolve(result overlappedResult) {
	select {
	case op.ch <- result:
	default:
	}
}

// await blocks until the kernel completes the operation represented by op,
// then returns the bytes transferred or the reported error. It is the
// consumer half of the one-shot channel: the "future" spec §4.2 describes.
func (op *ioOperation) await() (int, error) {
	r := <-op.ch
	runtime.KeepAlive(op)
	return int(r.bytesTransferred), r.err
}

// awaitContext blocks until the kernel completes op or ctx is cancelled,
// whichever comes first. On cancellation it invokes cancel (expected to
// call windows.CancelIoEx on the same handle/overlapped pair) and then
// still waits for the kernel's completion, since the overlapped storage
// must not be considered free until the kernel has actually let go of it
// (spec §5: "dropping a future whose overlapped is in flight must not free
// the overlapped storage").
func (op *ioOperation) awaitContext(ctx context.Context, cancel func()) (int, error) {
	select {
	case r := <-op.ch:
		runtime.KeepAlive(op)
		return int(r.bytesTransferred), r.err
	case <-ctx.Done():
		cancel()
		r := <-op.ch
		runtime.KeepAlive(op)
		_ = r
		return 0, ctx.Err()
	}
}

// operationFromOverlapped recovers the *ioOperation that owns a given
// *windows.Overlapped, relying on the Overlapped field being the first
// field of ioOperation (so their addresses coincide). This is the same
// technique go-winio's ioCompletionProcessor uses to get from the pointer
// GetQueuedCompletionStatus hands back to the structure that issued the
// operation.
func operationFromOverlapped(o *windows.Overlapped) *ioOperation {
	return (*ioOperation)(unsafe.Pointer(o))
}
