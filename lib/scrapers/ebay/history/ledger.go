package history

import (
	"bidsniper/lib/auction"
	"bidsniper/lib/htmlutil"
	"fmt"
	"log/slog"
	"strings"
)

const privateBidder = "private auction - bidders' identities protected"

// findBidTable moves past the header row of the bid (or purchase) table,
// a header has at least 5 columns and names the bidder in the second.
func (p *parser) findBidTable() bool {
	t := p.t
	t.Reset()
	for {
		if _, ok := t.NextTableStart(); !ok {
			return false
		}
		mark := t.Offset()
		row, ok := t.NextRow()
		if ok && len(row) >= 5 {
			header := htmlutil.TextOf(row[1])
			if strings.HasPrefix(header, "Bidder") || strings.HasPrefix(header, "User ID") {
				return true
			}
		}
		t.Seek(mark)
	}
}

func (p *parser) parseBidTable() error {
	if !p.findBidTable() {
		return p.fail(auction.KindNoHighBid, "", "cannot find bid table header")
	}

	// single column rows are separators
	row, ok := p.t.NextRow()
	for ok && len(row) == 1 {
		row, ok = p.t.NextRow()
	}
	if !ok {
		row = nil
	}

	switch {
	case len(row) == 2:
		return p.parseNoBids(row)
	case len(row) == 6 && p.kind.page != pageViewBids:
		p.parsePurchases(row)
		return nil
	case len(row) == 5 || len(row) == 6:
		return p.parseBids(row)
	}

	if !p.kind.infer(p.a) {
		return p.fail(auction.KindNoHighBid, "", fmt.Sprintf("%d columns in bid table", len(row)))
	}
	p.logInferred()
	return nil
}

func (p *parser) parseNoBids(row []string) error {
	a := p.a
	text := htmlutil.TextOf(row[1])
	if text == "No bids have been placed." || text == "No purchases have been made." {
		a.QuantityBid = 0
		a.Bids = 0
		a.Price = 0
		p.logNoBids()
		return nil
	}
	if !p.kind.infer(a) {
		return p.fail(auction.KindNoHighBid, "", "unrecognized bid table line")
	}
	p.logInferred()
	return nil
}

// parsePurchases reads a buy it now purchase table: blank, user, price,
// quantity, date, blank.
func (p *parser) parsePurchases(row []string) {
	a := p.a
	currently := htmlutil.TextOf(row[2])
	a.Bids = 0
	a.QuantityBid = 0
	a.Won = 0
	a.Winning = 0

	for ok := true; ok; row, ok = p.t.NextRow() {
		if len(row) != 6 {
			continue
		}
		quantity := htmlutil.IntOf(row[3])
		a.Bids++
		a.QuantityBid += quantity
		if p.isUser(htmlutil.TextOf(row[1])) {
			a.Won = quantity
			a.Winning = quantity
		}
	}

	slog.InfoContext(
		p.ctx, "purchases",
		"auction", a.ID,
		"bids", a.Bids,
		"currently", currently,
		"max_bid", a.BidPriceText,
		"winning", a.Winning,
	)
}

// parseBids reads a single item bid table: blank, user, price, date,
// blank and sometimes an action column. The first row is the leader.
func (p *parser) parseBids(row []string) error {
	a := p.a
	winner := htmlutil.TextOf(row[1])
	if strings.EqualFold(winner, "Member Id:") {
		winner = htmlutil.NthTextOf(row[1], 2)
	}
	currently := htmlutil.TextOf(row[2])

	a.QuantityBid = 1
	a.Price = a.ObservePrice(currently)
	if a.Price < 0.01 {
		if p.kind.infer(a) {
			p.logInferred()
			return nil
		}
		return p.fail(auction.KindConvPrice, currently, "bid price could not be converted")
	}

	if winner == privateBidder {
		winner = p.resolvePrivate()
	}

	if a.Bids < 0 {
		a.Bids = 1
		for {
			row, ok := p.t.NextRow()
			if !ok {
				break
			}
			if len(row) != 5 {
				continue
			}
			if htmlutil.TextOf(row[1]) == "Starting Price" {
				break
			}
			a.Bids++
		}
	}

	switch {
	case !p.isUser(winner):
		a.Winning = 0
		if a.Remain == 0 {
			a.Won = 0
		}
	case a.Reserve:
		a.Winning = 0
		if a.Remain == 0 {
			a.Won = 0
		}
	default:
		a.Winning = 1
		if a.Remain == 0 {
			a.Won = 1
		}
	}

	slog.InfoContext(
		p.ctx, "high bidder",
		"auction", a.ID,
		"bidder", winner,
		"winning", a.Winning == 1,
		"reserve_not_met", a.Reserve,
		"bids", a.Bids,
		"currently", currently,
		"max_bid", a.BidPriceText,
	)
	return nil
}

// resolvePrivate guesses the leader of a private auction: it is us when
// the price is within our bid and we either just bid successfully or are
// about to.
func (p *parser) resolvePrivate() string {
	a := p.a
	now := p.opts.Clock.Now()
	closing := a.EndUnix()-now.Unix() < int64(p.opts.BidTime.Seconds())
	ours := a.Price <= a.BidPrice && (a.BidResult == auction.BidResultSuccess ||
		(a.BidResult == auction.BidResultUnset && closing))
	if ours {
		return p.opts.Username
	}
	return "[private]"
}

func (p *parser) isUser(bidder string) bool {
	return p.opts.Username != "" && strings.EqualFold(bidder, p.opts.Username)
}

func (p *parser) logInferred() {
	slog.InfoContext(
		p.ctx, "high bidder inferred from page name",
		"auction", p.a.ID,
		"winning", p.a.Winning,
		"won", p.a.Won,
	)
}
