package auction

import (
	"errors"
	"fmt"
)

// Kind is the closed set of reasons an auction can fail.
type Kind int

const (
	KindNone Kind = iota
	KindBadItem
	KindNoTitle
	KindNoPrice
	KindConvPrice
	KindNoQuantity
	KindNoTime
	KindBadTime
	KindNoHighBid
	KindNetwork
	KindBidPrice
	KindBidToken
	KindBadPass
	KindOutbid
	KindReserveNotMet
	KindEnded
	KindDuplicate
	KindTooMany
	KindUnavailable
	KindLogin
	KindBuyerBlockPref
	KindBuyerBlockPrefNoShipping
	KindBuyerBlockPrefNoPaypal
	KindHighBidder
	KindMustSignIn
	KindCannotBid
	KindDutchSameBidQuantity
	KindCaptcha
	KindCancelled
	KindBidAssistant
	KindBuyerBlockPrefItemLimit
	KindBidGreaterThanBuyNow
	KindAlert
	KindBuyerRequirements
	KindUnknown
)

type kindInfo struct {
	name    string
	message string
}

// message may contain a single %s that is replaced by the error detail
var kinds = [...]kindInfo{
	KindNone:                     {"none", ""},
	KindBadItem:                  {"baditem", "Unknown item"},
	KindNoTitle:                  {"notitle", "Title not found"},
	KindNoPrice:                  {"noprice", "Current price not found"},
	KindConvPrice:                {"convprice", `Cannot convert price "%s"`},
	KindNoQuantity:               {"noquantity", "Quantity not found"},
	KindNoTime:                   {"notime", "Time remaining not found"},
	KindBadTime:                  {"badtime", `Unknown time interval "%s"`},
	KindNoHighBid:                {"nohighbid", "High bidder not found"},
	KindNetwork:                  {"network", "Cannot connect to URL %s"},
	KindBidPrice:                 {"bidprice", "Bid price less than minimum bid price"},
	KindBidToken:                 {"bidtoken", "Bid token not found"},
	KindBadPass:                  {"badpass", "Bad username or password"},
	KindOutbid:                   {"outbid", "You have been outbid"},
	KindReserveNotMet:            {"reservenotmet", "Reserve not met"},
	KindEnded:                    {"ended", "Auction has ended"},
	KindDuplicate:                {"duplicate", "Duplicate auction"},
	KindTooMany:                  {"toomany", "Too many errors, quitting"},
	KindUnavailable:              {"unavailable", "Auction site temporarily unavailable"},
	KindLogin:                    {"login", "Login failed"},
	KindBuyerBlockPref:           {"buyerblockpref", "Seller has blocked your userid"},
	KindBuyerBlockPrefNoShipping: {"buyerblockprefdoesnotshiptolocation", "Seller does not ship to your location"},
	KindBuyerBlockPrefNoPaypal:   {"buyerblockprefnolinkedpaypalaccount", "Seller requires buyer to have paypal account"},
	KindHighBidder:               {"highbidder", "Bid amount must be higher than the proxy you already placed"},
	KindMustSignIn:               {"mustsignin", "Must sign in"},
	KindCannotBid:                {"cannotbid", "Cannot bid on item (fixed price item?)"},
	KindDutchSameBidQuantity:     {"dutchsamebidquantity", "Dutch auction bid must have higher price or quantity than prior bid"},
	KindCaptcha:                  {"captcha", "Login failed due to captcha"},
	KindCancelled:                {"cancelled", "Cancelled"},
	KindBidAssistant:             {"bidassistant", "Do not use this tool and the site's bid assistant together"},
	KindBuyerBlockPrefItemLimit:  {"buyerblockprefitemcountlimitexceeded", "You are currently winning or have bought the maximum-allowed number of this seller's items in the last 10 days"},
	KindBidGreaterThanBuyNow:     {"bidgreaterthanbin_binblock", "Your maximum bid is above or equal to the Buy It Now price"},
	KindAlert:                    {"alert", "An alert message was displayed, your bid was not accepted"},
	KindBuyerRequirements:        {"buyerrequirements", "Seller has set some requirements, you cannot bid on this item"},
	KindUnknown:                  {"unknown", "Unknown error code %s"},
}

func (k Kind) valid() bool {
	return k >= KindNone && int(k) < len(kinds)
}

func (k Kind) String() string {
	if !k.valid() {
		return kinds[KindUnknown].name
	}
	return kinds[k].name
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for i, info := range kinds {
		if info.name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", string(text))
}

// Error is the error carried by an auction record.
type Error struct {
	Auction string
	Kind    Kind
	Detail  string
}

func (e *Error) Message() string {
	kind := e.Kind
	detail := e.Detail
	if !kind.valid() {
		detail = fmt.Sprint(int(kind))
		kind = KindUnknown
	}
	msg := kinds[kind].message
	for i := 0; i+1 < len(msg); i++ {
		if msg[i] == '%' && msg[i+1] == 's' {
			return msg[:i] + detail + msg[i+2:]
		}
	}
	return msg
}

func (e *Error) Error() string {
	return fmt.Sprintf("auction %s: %s", e.Auction, e.Message())
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &Error{Kind: KindOutbid}) works regardless of detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var aerr *Error
	if !errors.As(err, &aerr) {
		return false
	}
	return aerr.Kind == kind
}

// KindOf returns the kind carried by err, KindNone when err is nil and
// KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var aerr *Error
	if !errors.As(err, &aerr) {
		return KindUnknown
	}
	return aerr.Kind
}
