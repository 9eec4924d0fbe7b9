package core

import (
	"bidsniper/lib/auction"
	"bidsniper/lib/restyutil"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mazen160/go-random"
)

// Reporter captures pages the scrapers did not understand. Reporting is
// never fatal, the caller decides what to do with the auction.
type Reporter interface {
	Report(ctx context.Context, where string, a *auction.Auction, page []byte, reason string)
}

type NopReporter struct{}

func (NopReporter) Report(context.Context, string, *auction.Auction, []byte, string) {}

// FileReporter writes the page and a snapshot of the auction to output,
// each capture is named after a random id that is logged.
type FileReporter struct {
	output restyutil.InstrumentOutput
}

func NewFileReporter(output restyutil.InstrumentOutput) FileReporter {
	return FileReporter{output: output}
}

type capture struct {
	Where   string           `json:"where"`
	Reason  string           `json:"reason"`
	Time    time.Time        `json:"time"`
	Auction *auction.Auction `json:"auction,omitempty"`
}

func captureID() string {
	id, err := random.String(8)
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return id
}

func (r FileReporter) Report(ctx context.Context, where string, a *auction.Auction, page []byte, reason string) {
	id := fmt.Sprintf("bug-%s", captureID())

	snapshot, err := json.MarshalIndent(capture{
		Where:   where,
		Reason:  reason,
		Time:    time.Now(),
		Auction: a,
	}, "", "  ")
	if err != nil {
		slog.WarnContext(ctx, "failed to serialize auction snapshot", "err", err)
		snapshot = []byte(reason)
	}
	r.output.Write(id+".json", string(snapshot))
	r.output.Write(id+".html", string(page))

	auctionID := ""
	if a != nil {
		auctionID = a.ID
	}
	diagnosticsCaptured.Add(ctx, 1)
	slog.WarnContext(
		ctx, "captured unrecognized page",
		"where", where,
		"auction", auctionID,
		"reason", reason,
		"capture", id,
	)
}
