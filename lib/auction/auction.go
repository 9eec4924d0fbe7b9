package auction

import (
	"errors"
	"time"
)

type BidResult int

const (
	BidResultUnset   BidResult = -1
	BidResultSuccess BidResult = 0
	BidResultFailure BidResult = 1
)

// Auction is the state of a single auction being watched. It is created
// from user input and mutated in place by every parse.
type Auction struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`

	// BidPriceText is the normalized bid price as it is sent to the site.
	BidPriceText string  `json:"bid_price_text"`
	BidPrice     float64 `json:"bid_price"`

	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	Quantity    int     `json:"quantity"`
	QuantityBid int     `json:"quantity_bid"`
	Bids        int     `json:"bids"`
	Reserve     bool    `json:"reserve"`
	Shipping    string  `json:"shipping,omitempty"`

	RemainText string    `json:"remain_text"`
	Remain     int64     `json:"remain"`
	EndTime    time.Time `json:"end_time"`
	// Latency is the last measured time to first byte, in seconds.
	Latency int64 `json:"latency"`

	Token     string    `json:"-"`
	BidResult BidResult `json:"bid_result"`

	// Won and Winning are -1 when unknown.
	Won     int `json:"won"`
	Winning int `json:"winning"`

	ErrorKind   Kind   `json:"error_kind"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// New creates an auction record, bidPrice is run through FixupPrice.
// An empty bidPrice yields a BidPrice of -1.
func New(id, bidPrice string) *Auction {
	a := &Auction{
		ID:        id,
		BidPrice:  -1,
		BidResult: BidResultUnset,
		Won:       -1,
	}
	if bidPrice != "" {
		a.BidPriceText, _ = FixupPrice(bidPrice)
		a.BidPrice = ParsePrice(a.BidPriceText)
	}
	return a
}

func (a *Auction) ResetError() {
	a.ErrorKind = KindNone
	a.ErrorDetail = ""
}

// SetError replaces the current error state and returns it as an error.
func (a *Auction) SetError(kind Kind, detail string) error {
	a.ResetError()
	a.ErrorKind = kind
	a.ErrorDetail = detail
	return a.Err()
}

// Adopt records err on the auction. Errors that are not an *Error are
// recorded as network failures.
func (a *Auction) Adopt(err error) error {
	if err == nil {
		return nil
	}
	var aerr *Error
	if errors.As(err, &aerr) {
		return a.SetError(aerr.Kind, aerr.Detail)
	}
	return a.SetError(KindNetwork, err.Error())
}

// Err returns the current error state, nil if there is none.
func (a *Auction) Err() error {
	if a.ErrorKind == KindNone {
		return nil
	}
	return &Error{
		Auction: a.ID,
		Kind:    a.ErrorKind,
		Detail:  a.ErrorDetail,
	}
}

// EndUnix returns the end time in unix seconds, 0 if the auction has
// no known end time.
func (a *Auction) EndUnix() int64 {
	if a.EndTime.IsZero() {
		return 0
	}
	return a.EndTime.Unix()
}

// SetRemain records the remaining time observed at start.
func (a *Auction) SetRemain(start time.Time, remain int64) {
	a.Remain = remain
	if remain > 0 {
		a.EndTime = start.Add(time.Duration(remain) * time.Second)
		return
	}
	a.EndTime = time.Time{}
}

// Expired reports whether the auction has ended as of now.
func (a *Auction) Expired(now time.Time) bool {
	return a.EndUnix() <= now.Unix()
}
