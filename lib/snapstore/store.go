// Package snapstore keeps a history of what was observed about each
// auction and what came of every bid.
package snapstore

import (
	devenv "bidsniper/dev/env"
	"bidsniper/internal/db"
	"bidsniper/lib/auction"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the sqlite database at path and makes
// sure the schema exists.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	dbpath, err := devenv.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	_, statErr := os.Stat(dbpath)
	if os.IsNotExist(statErr) {
		f, err := os.Create(dbpath)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	sqlite.SetMaxOpenConns(1)
	_, err = sqlite.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		sqlite.Close()
		return nil, err
	}
	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		sqlite.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return sqlite, nil
}

type Store struct {
	db     *sql.DB
	qry    *db.Queries
	makeTx db.MakeTx
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:     database,
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// RecordSnapshot stores the state of a as observed at t.
func (s Store) RecordSnapshot(ctx context.Context, t time.Time, a *auction.Auction) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	err = tx.UpsertAuction(ctx, db.UpsertAuctionParams{
		ID:    a.ID,
		Title: a.Title,
	})
	if err != nil {
		return err
	}
	err = tx.CreateSnapshot(ctx, db.CreateSnapshotParams{
		AuctionID:   a.ID,
		Time:        t.Unix(),
		Price:       a.Price,
		Currency:    a.Currency,
		Quantity:    int64(a.Quantity),
		QuantityBid: int64(a.QuantityBid),
		Bids:        int64(a.Bids),
		Reserve:     boolInt(a.Reserve),
		Remain:      a.Remain,
		Winning:     int64(a.Winning),
		Won:         int64(a.Won),
		ErrorKind:   a.ErrorKind.String(),
	})
	if err != nil {
		return err
	}
	return commit()
}

// RecordBid stores the outcome of a bid of quantity items on a.
func (s Store) RecordBid(ctx context.Context, t time.Time, a *auction.Auction, quantity int) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	err = tx.UpsertAuction(ctx, db.UpsertAuctionParams{
		ID:    a.ID,
		Title: a.Title,
	})
	if err != nil {
		return err
	}
	result := "success"
	if a.BidResult != auction.BidResultSuccess {
		result = a.ErrorKind.String()
	}
	err = tx.CreateBidOutcome(ctx, db.CreateBidOutcomeParams{
		AuctionID: a.ID,
		Time:      t.Unix(),
		BidPrice:  a.BidPriceText,
		Quantity:  int64(quantity),
		Result:    result,
	})
	if err != nil {
		return err
	}
	return commit()
}

type Snapshot struct {
	Time        time.Time
	Price       float64
	Currency    string
	Quantity    int
	QuantityBid int
	Bids        int
	Reserve     bool
	Remain      int64
	Winning     int
	Won         int
	Error       string
}

type BidOutcome struct {
	Time     time.Time
	BidPrice string
	Quantity int
	Result   string
}

type History struct {
	AuctionID string
	Title     string
	Snapshots []Snapshot
	Bids      []BidOutcome
}

// Pull returns everything recorded about an auction, oldest first.
func (s Store) Pull(ctx context.Context, auctionID string) (History, error) {
	history := History{AuctionID: auctionID}

	title, err := s.qry.GetAuctionTitle(ctx, auctionID)
	if errors.Is(err, sql.ErrNoRows) {
		return history, nil
	}
	if err != nil {
		return History{}, err
	}
	history.Title = title

	snapshots, err := s.qry.GetSnapshots(ctx, auctionID)
	if err != nil {
		return History{}, err
	}
	for _, r := range snapshots {
		history.Snapshots = append(history.Snapshots, Snapshot{
			Time:        time.Unix(r.Time, 0),
			Price:       r.Price,
			Currency:    r.Currency,
			Quantity:    int(r.Quantity),
			QuantityBid: int(r.QuantityBid),
			Bids:        int(r.Bids),
			Reserve:     r.Reserve != 0,
			Remain:      r.Remain,
			Winning:     int(r.Winning),
			Won:         int(r.Won),
			Error:       r.ErrorKind,
		})
	}

	bids, err := s.qry.GetBidOutcomes(ctx, auctionID)
	if err != nil {
		return History{}, err
	}
	for _, r := range bids {
		history.Bids = append(history.Bids, BidOutcome{
			Time:     time.Unix(r.Time, 0),
			BidPrice: r.BidPrice,
			Quantity: int(r.Quantity),
			Result:   r.Result,
		})
	}

	return history, nil
}
