package history

import (
	"bidsniper/lib/auction"
	"strings"
)

type pageType int

const (
	pageUnknown pageType = iota
	pageViewBids
	pageViewTransactions
)

type auctionState int

const (
	stateUnknown auctionState = iota
	stateActive
	stateClosed
)

type auctionResult int

const (
	resultUnknown auctionResult = iota
	resultHighBidder
	resultNone
	resultOutbid
)

// pageKind is what a bid history page name says about the auction, e.g.
// PageViewBids_Active_HighBidder.
type pageKind struct {
	page   pageType
	state  auctionState
	result auctionResult
}

func decodeViewBids(pageName string) pageKind {
	kind := pageKind{page: pageViewBids}
	parts := strings.FieldsFunc(pageName, func(r rune) bool {
		return r == '_'
	})
	if len(parts) > 1 {
		switch parts[1] {
		case "Active":
			kind.state = stateActive
		case "Closed":
			kind.state = stateClosed
		}
	}
	if len(parts) > 2 {
		switch parts[2] {
		case "None":
			kind.result = resultNone
		case "HighBidder":
			kind.result = resultHighBidder
		case "Outbid":
			kind.result = resultOutbid
		}
	}
	return kind
}

// infer fills in the bidding outcome from the page kind alone, used when
// the bid table cannot be read. It reports false when the page kind says
// nothing conclusive.
func (k pageKind) infer(a *auction.Auction) bool {
	if k.page != pageViewBids {
		return false
	}

	switch {
	case k.state == stateActive && k.result == resultHighBidder:
		// assume a single item was bid on, a zero quantity keeps the
		// auction from being evaluated again
		a.QuantityBid = 1
		a.Winning = 1
		a.Won = 0
		a.Quantity = 0
	case k.state == stateActive && k.result == resultNone:
		a.QuantityBid = 0
		a.Winning = 0
		a.Won = 0
		a.Quantity = 0
	case k.state == stateClosed && k.result == resultHighBidder:
		a.QuantityBid = 1
		a.Winning = 1
		a.Won = 1
		a.Quantity = 1
	case k.state == stateClosed && (k.result == resultNone || k.result == resultOutbid):
		a.QuantityBid = 0
		a.Winning = 0
		a.Won = 0
		a.Quantity = 0
	default:
		return false
	}
	return true
}
