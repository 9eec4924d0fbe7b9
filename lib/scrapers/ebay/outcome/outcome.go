// Package outcome classifies the pages the site answers a bid, a bid
// token request or a sign in with.
package outcome

import (
	"bidsniper/lib/auction"
	"bidsniper/lib/htmlutil"
	"bidsniper/lib/textutil"
	"strings"
)

type matcher func(info htmlutil.PageInfo) bool

type rule struct {
	match matcher
	kind  auction.Kind
}

func nameIs(name string) matcher {
	return func(info htmlutil.PageInfo) bool {
		return info.PageName == name
	}
}

func nameIsFold(name string) matcher {
	return func(info htmlutil.PageInfo) bool {
		return strings.EqualFold(info.PageName, name)
	}
}

func namePrefix(prefix string) matcher {
	return func(info htmlutil.PageInfo) bool {
		return strings.HasPrefix(info.PageName, prefix)
	}
}

func namePrefixFold(prefix string) matcher {
	return func(info htmlutil.PageInfo) bool {
		return textutil.HasPrefixFold(info.PageName, prefix)
	}
}

func srcIs(src string) matcher {
	return func(info htmlutil.PageInfo) bool {
		return info.SrcID == src
	}
}

// unnamedSrcIsFold only matches pages that carry no page name.
func unnamedSrcIsFold(src string) matcher {
	return func(info htmlutil.PageInfo) bool {
		return info.PageName == "" && strings.EqualFold(info.SrcID, src)
	}
}

func anyOf(matchers ...matcher) matcher {
	return func(info htmlutil.PageInfo) bool {
		for _, m := range matchers {
			if m(info) {
				return true
			}
		}
		return false
	}
}

func classify(rules []rule, info htmlutil.PageInfo) (auction.Kind, bool) {
	for _, r := range rules {
		if r.match(info) {
			return r.kind, true
		}
	}
	return auction.KindNone, false
}

// rules are evaluated in order, the first match wins

var acceptBidRules = []rule{
	{nameIs("Bid confirmation"), auction.KindNone},
	// AcceptBid_HighBidder, AcceptBid_HighBidder_rebid, ...
	{namePrefix("AcceptBid_HighBidder"), auction.KindNone},
	{namePrefix("AcceptBid_Outbid"), auction.KindOutbid},
	{namePrefix("AcceptBid_ReserveNotMet"), auction.KindReserveNotMet},
}

var bidErrorRules = []rule{
	{unnamedSrcIsFold("ViewItem"), auction.KindEnded},
	{nameIsFold("Place bid"), auction.KindOutbid},
	{nameIsFold("eBay Alerts"), auction.KindAlert},
	{nameIsFold("Buyer Requirements"), auction.KindBuyerRequirements},
	{nameIsFold("PageSignIn"), auction.KindMustSignIn},
	{anyOf(namePrefixFold("BidManager"), namePrefixFold("BidAssistant")), auction.KindBidAssistant},
	{anyOf(nameIsFold("MakeBidError"), nameIsFold("MakeBidErrorAuctionEnded")), auction.KindEnded},
	{anyOf(nameIsFold("MakeBidErrorAuctionEnded_BINblock"), nameIsFold("MakeBidErrorAuctionEnded_BINblock ")), auction.KindCancelled},
	{nameIsFold("MakeBidErrorPassword"), auction.KindBadPass},
	{nameIsFold("MakeBidErrorMinBid"), auction.KindBidPrice},
	{nameIsFold("MakeBidErrorBuyerBlockPref"), auction.KindBuyerBlockPref},
	{nameIsFold("MakeBidErrorBuyerBlockPrefDoesNotShipToLocation"), auction.KindBuyerBlockPrefNoShipping},
	{nameIsFold("MakeBidErrorBuyerBlockPrefNoLinkedPaypalAccount"), auction.KindBuyerBlockPrefNoPaypal},
	{nameIsFold("MakeBidErrorHighBidder"), auction.KindHighBidder},
	{nameIsFold("MakeBidErrorCannotBidOnItem"), auction.KindCannotBid},
	{nameIsFold("MakeBidErrorDutchSameBidQuantity"), auction.KindDutchSameBidQuantity},
	{nameIsFold("MakeBidErrorBuyerBlockPrefItemCountLimitExceeded"), auction.KindBuyerBlockPrefItemLimit},
	{nameIsFold("MakeBidErrorBidGreaterThanBin_BINblock"), auction.KindBidGreaterThanBuyNow},
}

var loginRules = []rule{
	// my ebay pages are named inconsistently: MyeBaySummary, MyEbay, myebay, ...
	{anyOf(srcIs("SignInAlertSupressor"), namePrefixFold("MyeBay"), namePrefixFold("My eBay")), auction.KindNone},
	{anyOf(nameIs("Welcome to eBay"), nameIs("Welcome to eBay - Sign in - Error")), auction.KindBadPass},
	{nameIs("PageSignIn"), auction.KindLogin},
	{srcIs("Captcha.xsl"), auction.KindCaptcha},
}

// ClassifyAcceptBid recognizes the pages of a bid the site took, KindNone
// means the bid is the highest.
func ClassifyAcceptBid(info htmlutil.PageInfo) (auction.Kind, bool) {
	return classify(acceptBidRules, info)
}

// ClassifyBidError recognizes the pages of a bid or bid token request the
// site refused.
func ClassifyBidError(info htmlutil.PageInfo) (auction.Kind, bool) {
	return classify(bidErrorRules, info)
}

// ClassifyBid runs ClassifyAcceptBid and then ClassifyBidError. ok is false
// when neither recognizes the page.
func ClassifyBid(info htmlutil.PageInfo) (kind auction.Kind, ok bool) {
	kind, ok = ClassifyAcceptBid(info)
	if ok {
		return kind, true
	}
	return ClassifyBidError(info)
}

// ClassifyLogin maps the page a sign in ends on to KindNone on success or
// the reason it failed. ok is false for pages that are not recognized,
// they still fail with KindLogin.
func ClassifyLogin(info htmlutil.PageInfo) (kind auction.Kind, ok bool) {
	kind, ok = classify(loginRules, info)
	if !ok {
		return auction.KindLogin, false
	}
	return kind, true
}

// Apply records the outcome of a bid or bid token request on a.
func Apply(a *auction.Auction, kind auction.Kind) error {
	if kind == auction.KindNone {
		a.ResetError()
		a.BidResult = auction.BidResultSuccess
		return nil
	}
	a.BidResult = auction.BidResultFailure
	return a.SetError(kind, "")
}
