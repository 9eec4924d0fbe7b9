package core

import (
	"bidsniper/lib/telemetry"

	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("bidsniper.lib.scrapers.ebay.core")
var meter = telemetry.Meter("bidsniper.lib.scrapers.ebay.core")

var fetchLatency, _ = meter.Float64Histogram(
	"fetch_latency_seconds",
	metric.WithDescription("time between sending a request and the first byte of its response"),
	metric.WithUnit("s"),
)

var diagnosticsCaptured, _ = meter.Int64Counter(
	"diagnostics_captured",
	metric.WithDescription("pages that were not understood and captured for inspection"),
)

var logins, _ = meter.Int64Counter(
	"logins",
	metric.WithDescription("sign in attempts"),
)
