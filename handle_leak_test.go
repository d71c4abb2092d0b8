//go:build windows && npipedebug

package npipe_test

import (
	"context"
	"testing"

	"github.com/go-ipc/npipe"
	"github.com/stretchr/testify/require"
)

// Scenario 6 (spec §8): run the client-to-server "hello world" message 100
// times, single-threaded, and assert the live-handle count after the last
// iteration equals the count after the first. The baseline is taken after
// the first iteration because the completion-port singleton, created on
// first use and never closed, counts as one live handle. Only built with
// "-tags npipedebug" since LiveHandles is compiled to a constant 0
// otherwise (see handle_release.go).
func TestLeakCheck(t *testing.T) {
	var baseline int64

	for i := 0; i < 100; i++ {
		name := uniqueName(t)
		server, err := npipe.NewMessageServer(name, nil)
		require.NoError(t, err)

		clientDone := make(chan error, 1)
		go func() {
			conn, err := npipe.DialMessage(context.Background(), name)
			if err != nil {
				clientDone <- err
				return
			}
			err = conn.WriteMessage([]byte("hello world"))
			conn.Close()
			clientDone <- err
		}()

		conn, next, err := server.WaitForConnection(context.Background())
		require.NoError(t, err)

		msg, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, "hello world", string(msg))

		require.NoError(t, <-clientDone)
		require.NoError(t, conn.Close())
		require.NoError(t, next.Close())
		if i == 0 {
			baseline = npipe.LiveHandles()
		}
	}

	require.Equal(t, baseline, npipe.LiveHandles())
}
