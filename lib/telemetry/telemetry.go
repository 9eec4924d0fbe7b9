package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
)

// Tracer returns a named tracer from the global provider, it is safe to
// call before Setup, spans are no-ops until a provider is installed.
func Tracer(name string) oteltrace.Tracer {
	return otel.Tracer(name)
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// InitSlog installs the default structured logger writing to stderr.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// Setup installs exporters for the signals c has an endpoint for, the
// others keep the global no-op providers.
func Setup(ctx context.Context, serviceName string, c Config) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	r, err := newResource(serviceName, c)
	if err != nil {
		return err
	}

	if c.Otlp.Traces.protocol() != "" {
		tracerProvider, err = newTraceProvider(ctx, r, c)
		if err != nil {
			return err
		}
		otel.SetTracerProvider(tracerProvider)
	}
	if c.Otlp.Metrics.protocol() != "" {
		meterProvider, err = newMetricProvider(ctx, r, c)
		if err != nil {
			return err
		}
		otel.SetMeterProvider(meterProvider)
	}
	return nil
}

// Shutdown flushes and stops whatever Setup installed, it does nothing
// if telemetry was never set up.
func Shutdown(ctx context.Context) error {
	var errlist []error
	if tracerProvider != nil {
		err := tracerProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
		tracerProvider = nil
	}
	if meterProvider != nil {
		err := meterProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
		meterProvider = nil
	}
	return errors.Join(errlist...)
}

// Enabled reports whether any exporter is installed.
func Enabled() bool {
	return tracerProvider != nil || meterProvider != nil
}
