package sniper

import (
	"bidsniper/lib/auction"
	"context"
	"log/slog"
	"slices"
	"time"
)

const fetchTries = 3

// Sequence loads every auction, orders them for sniping and drops the
// ones that need no snipe. quantity is the number of items wanted, it is
// returned less the items already won. A sign in failure stops the batch.
func (s *Sniper) Sequence(ctx context.Context, auctions []*auction.Auction, quantity int) ([]*auction.Auction, int, error) {
	ctx, span := tracer.Start(ctx, "Sequence")
	defer span.End()

	for _, a := range auctions {
		err := s.load(ctx, a)
		if err != nil {
			return nil, quantity, err
		}
	}

	sorted := slices.Clone(auctions)
	if len(sorted) > 1 {
		slog.InfoContext(ctx, "sorting auctions", "count", len(sorted))
		slices.SortStableFunc(sorted, auction.Compare)
	}

	now := s.clock.Now()
	seen := make(map[string]bool, len(sorted))
	kept := make([]*auction.Auction, 0, len(sorted))
	for _, a := range sorted {
		duplicate := seen[a.ID]
		seen[a.ID] = true

		switch {
		case duplicate:
			a.SetError(auction.KindDuplicate, "")
		case a.Won > 0:
			quantity -= a.Won
			slog.InfoContext(ctx, "already won", "auction", a.ID, "won", a.Won)
			continue
		case a.ErrorKind != auction.KindNone:
		case a.Expired(now):
			slog.InfoContext(ctx, "auction has ended", "auction", a.ID)
			continue
		case !a.IsValidBidPrice():
			a.SetError(auction.KindBidPrice, "")
		default:
			kept = append(kept, a)
			continue
		}
		s.logError(ctx, a, a.Err())
	}
	return kept, quantity, nil
}

// load fetches a for the first time. The site being unavailable does not
// use up an attempt.
func (s *Sniper) load(ctx context.Context, a *auction.Auction) error {
	for attempt := 0; attempt < fetchTries; attempt++ {
		if attempt > 0 {
			slog.InfoContext(ctx, "retrying", "auction", a.ID, "attempt", attempt+1)
		}
		// the site blocks clients that load pages too quickly
		if s.opts.Delay > 0 {
			err := s.clock.Sleep(ctx, s.opts.Delay)
			if err != nil {
				return err
			}
		}

		err := s.GetInfo(ctx, a)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logError(ctx, a, err)

		switch auction.KindOf(err) {
		case auction.KindUnavailable:
			attempt--
			slog.InfoContext(ctx, "site unavailable, sleeping", "auction", a.ID, "duration", unavailableSleep)
			err := s.clock.Sleep(ctx, unavailableSleep)
			if err != nil {
				return err
			}
		case auction.KindLogin, auction.KindCaptcha:
			return err
		}
	}
	return nil
}

// Result is how one auction of a batch ended.
type Result struct {
	Auction *auction.Auction
	Won     int
}

type Summary struct {
	Finished time.Time
	// Wanted is the quantity the batch started with.
	Wanted  int
	Won     int
	Results []Result
}

// Run snipes a batch of auctions in order until enough items are won.
func (s *Sniper) Run(ctx context.Context, auctions []*auction.Auction) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	summary := Summary{Wanted: s.quantity}
	remaining, err := s.Prepare(ctx, auctions)
	if err != nil {
		summary.Finished = s.clock.Now()
		return summary, err
	}

	for i, a := range remaining {
		if s.quantity <= 0 {
			break
		}
		if len(auctions) > 1 {
			slog.InfoContext(ctx, "auctions remaining", "count", len(remaining)-i)
		}
		won := s.Snipe(ctx, a)
		summary.Won += won
		summary.Results = append(summary.Results, Result{Auction: a, Won: won})
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
	}
	summary.Finished = s.clock.Now()
	return summary, err
}

// Prepare sequences auctions against the quantity still wanted, lowering
// it by what was already won when Reduce is set.
func (s *Sniper) Prepare(ctx context.Context, auctions []*auction.Auction) ([]*auction.Auction, error) {
	remaining, quantity, err := s.Sequence(ctx, auctions, s.quantity)
	if err != nil {
		return nil, err
	}
	if quantity < s.quantity {
		slog.InfoContext(ctx, "items already won", "won", s.quantity-quantity)
		if s.opts.Reduce {
			s.quantity = quantity
			slog.InfoContext(ctx, "quantity reduced", "quantity", s.quantity)
		}
	}
	return remaining, nil
}
