package sniper

import (
	"bidsniper/lib/telemetry"

	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("bidsniper.services.sniper")
var meter = telemetry.Meter("bidsniper.services.sniper")

var bidsSubmitted, _ = meter.Int64Counter(
	"bids_submitted",
	metric.WithDescription("bids sent to the site, labeled with how they ended"),
)

var auctionErrors, _ = meter.Int64Counter(
	"auction_errors",
	metric.WithDescription("errors recorded on auctions, labeled by kind"),
)
