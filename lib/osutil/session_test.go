package osutil

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchSignals(t *testing.T) {
	sigs := make(chan os.Signal, 2)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	exited := make(chan int, 1)

	go watchSignals(sigs, cancel, done, func(code int) { exited <- code })

	sigs <- syscall.SIGINT
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled by the first signal")
	}
	require.Empty(t, exited)

	sigs <- syscall.SIGTERM
	select {
	case code := <-exited:
		require.Equal(t, exitInterrupted, code)
	case <-time.After(time.Second):
		t.Fatal("second signal did not exit")
	}
}

func TestWatchSignalsStopped(t *testing.T) {
	sigs := make(chan os.Signal, 2)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	finished := make(chan struct{})

	go func() {
		watchSignals(sigs, cancel, done, func(int) { t.Error("exit called") })
		close(finished)
	}()
	close(done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("watcher did not return after stop")
	}
	require.NoError(t, ctx.Err())
}

func TestSignalContextStop(t *testing.T) {
	ctx, stop := SignalContext(context.Background())
	require.NoError(t, ctx.Err())
	stop()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}
