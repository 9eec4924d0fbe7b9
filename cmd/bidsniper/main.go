package main

import (
	"bidsniper/cmd/bidsniper/commands"
	"bidsniper/lib/osutil"
	"bidsniper/lib/telemetry"
	"context"
	"log/slog"
	"os"
	"time"
)

func shutdownTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := telemetry.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to shut down telemetry", "err", err)
	}
}

func main() {
	ctx, stop := osutil.SignalContext(context.Background())

	telemetry.InitSlog(false)
	err := telemetry.SetupFromEnv(ctx, "bidsniper")
	if err != nil {
		slog.Warn("failed to set up telemetry", "err", err)
	}
	if telemetry.Enabled() {
		telemetry.InstrumentPerfStats(ctx)
	}

	ok := commands.ExecuteContext(ctx)
	shutdownTelemetry()
	stop()
	if !ok {
		os.Exit(1)
	}
}
