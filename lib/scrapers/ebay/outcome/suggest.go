package outcome

import (
	"bidsniper/lib/textutil"

	"github.com/antzucaro/matchr"
)

// knownPageNames are the page names the classifiers recognize, used to
// point at the closest one when a page is not recognized.
var knownPageNames = []string{
	"Bid confirmation",
	"AcceptBid_HighBidder",
	"AcceptBid_Outbid",
	"AcceptBid_ReserveNotMet",
	"Place bid",
	"eBay Alerts",
	"Buyer Requirements",
	"PageSignIn",
	"BidManager",
	"BidAssistant",
	"MakeBidError",
	"MakeBidErrorAuctionEnded",
	"MakeBidErrorAuctionEnded_BINblock",
	"MakeBidErrorPassword",
	"MakeBidErrorMinBid",
	"MakeBidErrorBuyerBlockPref",
	"MakeBidErrorBuyerBlockPrefDoesNotShipToLocation",
	"MakeBidErrorBuyerBlockPrefNoLinkedPaypalAccount",
	"MakeBidErrorHighBidder",
	"MakeBidErrorCannotBidOnItem",
	"MakeBidErrorDutchSameBidQuantity",
	"MakeBidErrorBuyerBlockPrefItemCountLimitExceeded",
	"MakeBidErrorBidGreaterThanBin_BINblock",
	"MyeBaySummary",
	"Welcome to eBay",
	"Welcome to eBay - Sign in - Error",
	"PageViewBids",
	"PageViewTransactions",
}

// Suggest returns the known page name closest to name and how similar
// they are, between 0 and 1.
func Suggest(name string) (string, float64) {
	normalized := textutil.NormalizeName(name)
	if normalized == "" {
		return "", 0
	}

	var best string
	var bestScore float64
	for _, known := range knownPageNames {
		score := matchr.JaroWinkler(normalized, textutil.NormalizeName(known), false)
		if score > bestScore {
			best = known
			bestScore = score
		}
	}
	return best, bestScore
}
