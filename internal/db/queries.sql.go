package db

import (
	"context"
)

const upsertAuction = `-- name: UpsertAuction :exec
insert into auction(id, title) values (?, ?)
on conflict (id) do update set title = excluded.title where excluded.title != ''
`

type UpsertAuctionParams struct {
	ID    string
	Title string
}

func (q *Queries) UpsertAuction(ctx context.Context, arg UpsertAuctionParams) error {
	_, err := q.db.ExecContext(ctx, upsertAuction, arg.ID, arg.Title)
	return err
}

const createSnapshot = `-- name: CreateSnapshot :exec
insert into snapshot(
    auction_id, time, price, currency, quantity, quantity_bid,
    bids, reserve, remain, winning, won, error_kind
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateSnapshotParams = Snapshot

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createSnapshot,
		arg.AuctionID,
		arg.Time,
		arg.Price,
		arg.Currency,
		arg.Quantity,
		arg.QuantityBid,
		arg.Bids,
		arg.Reserve,
		arg.Remain,
		arg.Winning,
		arg.Won,
		arg.ErrorKind,
	)
	return err
}

const createBidOutcome = `-- name: CreateBidOutcome :exec
insert into bid_outcome(auction_id, time, bid_price, quantity, result)
values (?, ?, ?, ?, ?)
`

type CreateBidOutcomeParams = BidOutcome

func (q *Queries) CreateBidOutcome(ctx context.Context, arg CreateBidOutcomeParams) error {
	_, err := q.db.ExecContext(ctx, createBidOutcome,
		arg.AuctionID,
		arg.Time,
		arg.BidPrice,
		arg.Quantity,
		arg.Result,
	)
	return err
}

const getSnapshots = `-- name: GetSnapshots :many
select auction_id, time, price, currency, quantity, quantity_bid,
    bids, reserve, remain, winning, won, error_kind
from snapshot
where auction_id = ?
order by time asc
`

func (q *Queries) GetSnapshots(ctx context.Context, auctionID string) ([]Snapshot, error) {
	rows, err := q.db.QueryContext(ctx, getSnapshots, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Snapshot
	for rows.Next() {
		var i Snapshot
		if err := rows.Scan(
			&i.AuctionID,
			&i.Time,
			&i.Price,
			&i.Currency,
			&i.Quantity,
			&i.QuantityBid,
			&i.Bids,
			&i.Reserve,
			&i.Remain,
			&i.Winning,
			&i.Won,
			&i.ErrorKind,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getBidOutcomes = `-- name: GetBidOutcomes :many
select auction_id, time, bid_price, quantity, result
from bid_outcome
where auction_id = ?
order by time asc
`

func (q *Queries) GetBidOutcomes(ctx context.Context, auctionID string) ([]BidOutcome, error) {
	rows, err := q.db.QueryContext(ctx, getBidOutcomes, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BidOutcome
	for rows.Next() {
		var i BidOutcome
		if err := rows.Scan(
			&i.AuctionID,
			&i.Time,
			&i.BidPrice,
			&i.Quantity,
			&i.Result,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getAuctionTitle = `-- name: GetAuctionTitle :one
select title from auction where id = ?
`

func (q *Queries) GetAuctionTitle(ctx context.Context, id string) (string, error) {
	row := q.db.QueryRowContext(ctx, getAuctionTitle, id)
	var title string
	err := row.Scan(&title)
	return title, err
}
