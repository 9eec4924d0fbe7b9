package snapstore

import (
	"bidsniper/internal/db"
	"bidsniper/lib/auction"
	"bidsniper/lib/testutil"
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "snapstore",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(res.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		history, err := store.Pull(ctx, "unknown")
		require.NoError(t, err)
		require.Empty(t, history.Snapshots)
		require.Empty(t, history.Bids)
	}

	start := time.Unix(1_700_000_000, 0)
	a := auction.New("123", "15.00")
	a.Title = "Vintage Lamp"
	a.Price = 12.5
	a.Currency = "US"
	a.Quantity = 1
	a.QuantityBid = 1
	a.Bids = 3
	a.Remain = 600
	require.NoError(t, store.RecordSnapshot(ctx, start, a))

	// a later failed parse knows no title, the stored one is kept
	a.Title = ""
	a.SetError(auction.KindNoTime, "")
	require.NoError(t, store.RecordSnapshot(ctx, start.Add(time.Minute), a))

	a.ResetError()
	a.BidResult = auction.BidResultSuccess
	require.NoError(t, store.RecordBid(ctx, start.Add(2*time.Minute), a, 1))
	a.BidResult = auction.BidResultFailure
	a.SetError(auction.KindOutbid, "")
	require.NoError(t, store.RecordBid(ctx, start.Add(3*time.Minute), a, 1))

	history, err := store.Pull(ctx, "123")
	require.NoError(t, err)

	expected := History{
		AuctionID: "123",
		Title:     "Vintage Lamp",
		Snapshots: []Snapshot{
			{
				Time:        start,
				Price:       12.5,
				Currency:    "US",
				Quantity:    1,
				QuantityBid: 1,
				Bids:        3,
				Remain:      600,
				Won:         -1,
				Error:       "none",
			},
			{
				Time:        start.Add(time.Minute),
				Price:       12.5,
				Currency:    "US",
				Quantity:    1,
				QuantityBid: 1,
				Bids:        3,
				Remain:      600,
				Won:         -1,
				Error:       "notime",
			},
		},
		Bids: []BidOutcome{
			{Time: start.Add(2 * time.Minute), BidPrice: "15.00", Quantity: 1, Result: "success"},
			{Time: start.Add(3 * time.Minute), BidPrice: "15.00", Quantity: 1, Result: "outbid"},
		},
	}
	diff := cmp.Diff(expected, history)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestOpen(t *testing.T) {
	path := t.TempDir() + "/snapshots.db"
	sqlite, err := Open(path)
	require.NoError(t, err)
	defer sqlite.Close()

	store := NewStore(sqlite)
	a := auction.New("1", "1.00")
	require.NoError(t, store.RecordSnapshot(context.Background(), time.Unix(0, 0), a))

	// opening again keeps the data
	sqlite.Close()
	sqlite, err = Open(path)
	require.NoError(t, err)
	history, err := NewStore(sqlite).Pull(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, history.Snapshots, 1)
}
