package osutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// exitInterrupted is the status of a process killed by SIGINT.
const exitInterrupted = 130

// SignalContext returns a context cancelled on the first SIGINT or
// SIGTERM, letting a running batch stop between auctions. A second signal
// exits right away. stop releases the signal handler.
func SignalContext(parent context.Context) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go watchSignals(sigs, cancel, done, os.Exit)

	return ctx, func() {
		signal.Stop(sigs)
		close(done)
		cancel()
	}
}

func watchSignals(sigs <-chan os.Signal, cancel func(), done <-chan struct{}, exit func(int)) {
	select {
	case sig := <-sigs:
		slog.Warn("stopping after the current step, signal again to exit now", "signal", sig.String())
		cancel()
	case <-done:
		return
	}

	select {
	case sig := <-sigs:
		slog.Warn("exiting", "signal", sig.String())
		exit(exitInterrupted)
	case <-done:
	}
}
