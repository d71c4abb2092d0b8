//go:build windows

package npipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCloseIdempotent(t *testing.T) {
	name := pipeAddr(uniqueHandleTestName(t))
	h, err := createServerPipe(name, true, ServerOptions{})
	require.NoError(t, err)

	handle := newHandle(h)
	require.NoError(t, handle.Close())
	// A second Close must not panic, reuse the already-released handle, or
	// surface an error: there is nothing actionable left to report.
	assert.NoError(t, handle.Close())
}

func uniqueHandleTestName(t *testing.T) string {
	return "npipe-handle-" + t.Name()
}
