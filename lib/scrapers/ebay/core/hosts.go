package core

import (
	"fmt"
	"strconv"
)

// Hosts are the site hosts each kind of request is sent to.
type Hosts struct {
	History string `json:"history"`
	PreBid  string `json:"prebid"`
	Bid     string `json:"bid"`
	Login   string `json:"login"`
	MyEbay  string `json:"myebay"`
}

func DefaultHosts() Hosts {
	return Hosts{
		History: "offer.ebay.com",
		PreBid:  "offer.ebay.com",
		Bid:     "offer.ebay.com",
		Login:   "signin.ebay.com",
		MyEbay:  "my.ebay.com",
	}
}

// WithDefaults fills every empty host with its default.
func (h Hosts) WithDefaults() Hosts {
	defaults := DefaultHosts()
	if h.History == "" {
		h.History = defaults.History
	}
	if h.PreBid == "" {
		h.PreBid = defaults.PreBid
	}
	if h.Bid == "" {
		h.Bid = defaults.Bid
	}
	if h.Login == "" {
		h.Login = defaults.Login
	}
	if h.MyEbay == "" {
		h.MyEbay = defaults.MyEbay
	}
	return h
}

func (h Hosts) BidHistoryURL(auction string) string {
	return fmt.Sprintf("http://%s/ws/eBayISAPI.dll?ViewBids&item=%s", h.History, auction)
}

// PreBidURL is the request that hands out a bid token, the quantity sent
// here is not binding, the real one goes with the bid.
func (h Hosts) PreBidURL(auction, price string, quantity int) string {
	return fmt.Sprintf(
		"http://%s/ws/eBayISAPI.dll?MfcISAPICommand=MakeBid&fb=2&co_partner_id=&item=%s&maxbid=%s&quant=%s",
		h.PreBid, auction, price, strconv.Itoa(quantity),
	)
}

func (h Hosts) SignInURL() string {
	return fmt.Sprintf("https://%s/ws/eBayISAPI.dll?SignIn", h.Login)
}

// SignInWelcomeURL expects username and password to already be query
// escaped.
func (h Hosts) SignInWelcomeURL(username, password string) string {
	return fmt.Sprintf(
		"https://%s/ws/eBayISAPI.dll?SignInWelcome&userid=%s&pass=%s&keepMeSignInOption=1",
		h.Login, username, password,
	)
}

// BidURL expects username to already be query escaped.
func (h Hosts) BidURL(auction, price string, quantity int, token, username string) string {
	return fmt.Sprintf(
		"http://%s/ws/eBayISAPI.dll?MfcISAPICommand=MakeBid&maxbid=%s&quant=%s&mode=1&uiid=%s&co_partnerid=2&user=%s&fb=2&item=%s",
		h.Bid, price, strconv.Itoa(quantity), token, username, auction,
	)
}

func (h Hosts) WatchingURL() string {
	return fmt.Sprintf("http://%s/ws/eBayISAPI.dll?MyeBay&CurrentPage=MyeBayWatching", h.MyEbay)
}
