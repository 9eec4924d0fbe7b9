package history

import (
	"bidsniper/internal/chrono"
	"bidsniper/lib/auction"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	reasons []string
}

func (r *recordingReporter) Report(_ context.Context, _ string, _ *auction.Auction, _ []byte, reason string) {
	r.reasons = append(r.reasons, reason)
}

type page struct {
	name      string
	srcID     string
	itemID    string
	title     string
	price     string
	reserve   bool
	quantity  string
	shipping  string
	timeLeft  string
	ended     bool
	totalBids string
	header    []string
	rows      [][]string
	noTable   bool
}

func bidRow(bidder, amount string) []string {
	return []string{"", bidder, amount, "Jan-01-24 10:00:00 PST", ""}
}

func purchaseRow(buyer, price, quantity string) []string {
	return []string{"", buyer, price, quantity, "Jan-01-24 10:00:00 PST", ""}
}

func activePage() page {
	return page{
		name:     "PageViewBids_Active_Outbid",
		itemID:   "123",
		title:    "Vintage Lamp",
		price:    "US $12.50",
		shipping: "US $5.00 Standard",
		timeLeft: "1 day 2 hours",
		header:   []string{"", "Bidder", "Bid Amount", "Bid Time", ""},
		rows: [][]string{
			bidRow("alice", "US $12.50"),
			bidRow("bob", "US $12.00"),
			bidRow("carol", "US $8.00"),
			bidRow("Starting Price", "US $1.00"),
		},
	}
}

func (p page) String() string {
	var b strings.Builder
	b.WriteString("<html><head><title>eBay bid history</title>")
	if p.name != "" {
		fmt.Fprintf(&b, `<!-- var pageName = "%s"; -->`, p.name)
	}
	if p.srcID != "" {
		fmt.Fprintf(&b, "<!-- srcId: %s -->", p.srcID)
	}
	b.WriteString("</head><body>\n<table><tr><td><h1>Bid History</h1></td></tr></table>\n")
	if p.itemID != "" {
		fmt.Fprintf(&b, `<div id="BHCtBidLabel"><span>Item number:</span> <span>%s</span></div>`+"\n", p.itemID)
	}
	if p.title != "" {
		fmt.Fprintf(&b, `<h2 id="itemTitle"><span>Item title:</span> <span>%s</span></h2>`+"\n", p.title)
	}
	if p.price != "" {
		fmt.Fprintf(&b, `<div><span id="BHCtBid">Current bid:</span> <span>%s</span>`, p.price)
		if p.reserve {
			b.WriteString(" <span>Reserve not met</span>")
		}
		b.WriteString("</div>\n")
	}
	if p.quantity != "" {
		fmt.Fprintf(&b, `<div><span id="BHCtBid">Quantity:</span> <span>%s</span></div>`+"\n", p.quantity)
	}
	if p.shipping != "" {
		fmt.Fprintf(&b, `<div><span id="BHCtBid">Shipping:</span> <span>%s</span></div>`+"\n", p.shipping)
	}
	if p.ended {
		b.WriteString("<div><span>Time Ended:</span> <span>Jan-02-24 10:00:00 PST</span></div>\n")
	} else if p.timeLeft != "" {
		fmt.Fprintf(&b, `<div><span>Time left:</span> <span class="timeLeft">%s</span></div>`+"\n", p.timeLeft)
	}
	if p.totalBids != "" {
		fmt.Fprintf(&b, "<div><span>Total Bids:</span> <span>%s</span></div>\n", p.totalBids)
	}
	if !p.noTable {
		b.WriteString(`<table class="ledger"><tr>`)
		for _, cell := range p.header {
			fmt.Fprintf(&b, "<th>%s</th>", cell)
		}
		b.WriteString("</tr>\n")
		fmt.Fprintf(&b, `<tr><td colspan="%d"><hr></td></tr>`+"\n", len(p.header))
		for _, row := range p.rows {
			b.WriteString("<tr>")
			for _, cell := range row {
				fmt.Fprintf(&b, "<td>%s</td>", cell)
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</table>\n")
	}
	b.WriteString("</body></html>")
	return b.String()
}

// state is the part of an auction a parse is expected to produce
type state struct {
	ID          string
	Title       string
	Price       float64
	Currency    string
	Quantity    int
	QuantityBid int
	Bids        int
	Reserve     bool
	Shipping    string
	RemainText  string
	Remain      int64
	Won         int
	Winning     int
	ErrorKind   auction.Kind
	ErrorDetail string
}

func stateOf(a *auction.Auction) state {
	return state{
		ID:          a.ID,
		Title:       a.Title,
		Price:       a.Price,
		Currency:    a.Currency,
		Quantity:    a.Quantity,
		QuantityBid: a.QuantityBid,
		Bids:        a.Bids,
		Reserve:     a.Reserve,
		Shipping:    a.Shipping,
		RemainText:  a.RemainText,
		Remain:      a.Remain,
		Won:         a.Won,
		Winning:     a.Winning,
		ErrorKind:   a.ErrorKind,
		ErrorDetail: a.ErrorDetail,
	}
}

var start = time.Unix(1_700_000_000, 0)

func parseOptions() Options {
	return Options{
		Username: "sniper",
		BidTime:  10 * time.Second,
		Clock:    chrono.NewFakeTime(start),
	}
}

func TestParse(t *testing.T) {
	base := state{
		ID:         "123",
		Title:      "Vintage Lamp",
		Price:      12.50,
		Currency:   "US",
		Quantity:   1,
		Shipping:   "US $5.00 Standard",
		RemainText: "1 day 2 hours",
		Remain:     93600,
		Won:        -1,
	}

	testCases := []struct {
		name     string
		page     func(p *page)
		bidPrice string
		prepare  func(a *auction.Auction)
		expected func(s *state)
	}{
		{
			name: "outbid, bids counted until the starting price",
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
			},
		},
		{
			name: "bid counter wins over counting rows",
			page: func(p *page) {
				p.totalBids = "7"
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 7
			},
		},
		{
			name: "winning",
			page: func(p *page) {
				p.name = "PageViewBids_Active_HighBidder"
				p.rows[0][1] = "SNIPER"
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
				s.Winning = 1
			},
		},
		{
			name: "won",
			page: func(p *page) {
				p.ended = true
				p.rows[0][1] = "sniper"
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
				s.Winning = 1
				s.Won = 1
				s.RemainText = "--"
				s.Remain = 0
			},
		},
		{
			name: "lost",
			page: func(p *page) {
				p.ended = true
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
				s.Won = 0
				s.RemainText = "--"
				s.Remain = 0
			},
		},
		{
			name: "leading below the reserve",
			page: func(p *page) {
				p.reserve = true
				p.rows[0][1] = "sniper"
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
				s.Reserve = true
			},
		},
		{
			name: "member id indirection",
			page: func(p *page) {
				p.rows[0][1] = `<span>Member Id:</span> <a href="#">sniper</a>`
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
				s.Winning = 1
			},
		},
		{
			name: "private auction after our bid went through",
			page: func(p *page) {
				p.rows[0][1] = privateBidder
			},
			bidPrice: "20.00",
			prepare: func(a *auction.Auction) {
				a.BidResult = auction.BidResultSuccess
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
				s.Winning = 1
			},
		},
		{
			name: "private auction far from the close",
			page: func(p *page) {
				p.rows[0][1] = privateBidder
			},
			bidPrice: "20.00",
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
			},
		},
		{
			name: "private auction about to close",
			page: func(p *page) {
				p.rows[0][1] = privateBidder
				p.timeLeft = "5 sec"
			},
			bidPrice: "20.00",
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
				s.Winning = 1
				s.RemainText = "5 sec"
				s.Remain = 5
			},
		},
		{
			name: "no bids counter",
			page: func(p *page) {
				p.totalBids = "0"
				p.noTable = true
			},
			expected: func(s *state) {
				s.Price = 0
			},
		},
		{
			name: "no bids row",
			page: func(p *page) {
				p.rows = [][]string{{"", "No bids have been placed."}}
			},
			expected: func(s *state) {
				s.Price = 0
			},
		},
		{
			name: "purchases",
			page: func(p *page) {
				p.name = "PageViewTransactions"
				p.quantity = "10 available"
				p.header = []string{"", "User ID", "Price", "Qty", "Date", ""}
				p.rows = [][]string{
					purchaseRow("alice", "US $12.50", "1"),
					{`<hr>`},
					purchaseRow("Sniper", "US $12.50", "2"),
					purchaseRow("bob", "US $12.50", "4"),
				}
			},
			expected: func(s *state) {
				s.Quantity = 10
				s.QuantityBid = 7
				s.Bids = 3
				s.Won = 2
				s.Winning = 2
			},
		},
		{
			name: "six columns on a bid page is a bid table",
			page: func(p *page) {
				p.header = []string{"", "Bidder", "Bid Amount", "Bid Time", "Action", ""}
				p.rows = [][]string{
					{"", "sniper", "US $12.50", "date", "retract", ""},
					bidRow("bob", "US $12.00"),
				}
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 2
				s.Winning = 1
			},
		},
		{
			name: "sold out quantity means ended",
			page: func(p *page) {
				p.quantity = "0"
			},
			expected: func(s *state) {
				s.Quantity = 0
				s.QuantityBid = 1
				s.Bids = 3
				s.Won = 0
				s.RemainText = "--"
				s.Remain = 0
			},
		},
		{
			name: "non numeric quantity",
			page: func(p *page) {
				p.quantity = "Limited"
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
			},
		},
		{
			name: "empty time left",
			page: func(p *page) {
				p.timeLeft = "Refresh"
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
				s.RemainText = ""
				s.Remain = 1
			},
		},
		{
			name: "undefined time left",
			page: func(p *page) {
				p.timeLeft = "undefined (refresh)"
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Bids = 3
				s.RemainText = "undefined (refresh)"
				s.Remain = 1
			},
		},
		{
			name: "unreadable table, active high bidder",
			page: func(p *page) {
				p.name = "PageViewBids_Active_HighBidder"
				p.rows = [][]string{{"a", "b", "c"}}
			},
			expected: func(s *state) {
				s.Quantity = 0
				s.QuantityBid = 1
				s.Winning = 1
				s.Won = 0
				s.Bids = -1
			},
		},
		{
			name: "unreadable table, active without bids",
			page: func(p *page) {
				p.name = "PageViewBids_Active_None"
				p.rows = [][]string{{"", "Something unexpected"}}
			},
			expected: func(s *state) {
				s.Quantity = 0
				s.Won = 0
				s.Bids = -1
			},
		},
		{
			name: "unreadable table, closed high bidder",
			page: func(p *page) {
				p.name = "PageViewBids_Closed_HighBidder"
				p.rows = nil
			},
			expected: func(s *state) {
				s.QuantityBid = 1
				s.Winning = 1
				s.Won = 1
				s.Bids = -1
			},
		},
		{
			name: "unreadable price, closed outbid",
			page: func(p *page) {
				p.name = "PageViewBids_Closed_Outbid"
				p.rows[0][2] = "--"
			},
			expected: func(s *state) {
				s.Price = 0
				s.Quantity = 0
				s.Won = 0
				s.Bids = -1
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			p := activePage()
			if test.page != nil {
				test.page(&p)
			}
			bidPrice := test.bidPrice
			if bidPrice == "" {
				bidPrice = "15.00"
			}
			a := auction.New("123", bidPrice)
			if test.prepare != nil {
				test.prepare(a)
			}

			reporter := &recordingReporter{}
			opts := parseOptions()
			opts.Reporter = reporter
			err := Parse(context.Background(), []byte(p.String()), start, a, opts)
			require.NoError(t, err)
			require.Empty(t, reporter.reasons)

			expected := base
			test.expected(&expected)
			diff := cmp.Diff(expected, stateOf(a))
			if diff != "" {
				t.Fatal(diff)
			}
			if a.Remain > 0 {
				require.Equal(t, start.Add(time.Duration(a.Remain)*time.Second), a.EndTime)
			} else {
				require.True(t, a.EndTime.IsZero())
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name     string
		page     func(p *page)
		raw      string
		kind     auction.Kind
		detail   string
		reported bool
	}{
		{
			name: "captcha",
			page: func(p *page) {
				p.name = ""
				p.srcID = "Captcha.xsl"
			},
			kind: auction.KindCaptcha,
		},
		{
			name: "security measure",
			page: func(p *page) {
				p.name = "Security Measure"
			},
			kind: auction.KindCaptcha,
		},
		{
			name: "sign in",
			page: func(p *page) {
				p.name = "PageSignIn"
			},
			kind: auction.KindMustSignIn,
		},
		{
			name: "unknown page",
			page: func(p *page) {
				p.name = "PageViewItem"
			},
			kind:     auction.KindNoTitle,
			reported: true,
		},
		{
			name:     "no page info",
			raw:      "<html><body><p>nothing here</p></body></html>",
			kind:     auction.KindNoTitle,
			reported: true,
		},
		{
			name: "unknown item",
			raw: `<html><head><!-- var pageName = "PageViewBids"; --></head>` +
				`<body><p>Unknown Item</p><p>Bid History</p></body></html>`,
			kind: auction.KindBadItem,
		},
		{
			name: "missing item number",
			page: func(p *page) {
				p.itemID = ""
			},
			kind:     auction.KindBadItem,
			reported: true,
		},
		{
			name: "other item",
			page: func(p *page) {
				p.itemID = "456"
			},
			kind:     auction.KindBadItem,
			reported: true,
		},
		{
			name: "missing title",
			page: func(p *page) {
				p.title = ""
			},
			kind:     auction.KindBadItem,
			reported: true,
		},
		{
			name: "unconvertible price",
			page: func(p *page) {
				p.price = "US $--"
			},
			kind:     auction.KindConvPrice,
			detail:   "US $--",
			reported: true,
		},
		{
			name: "unknown time unit",
			page: func(p *page) {
				p.timeLeft = "3 fortnights"
			},
			kind:     auction.KindBadTime,
			detail:   "3 fortnights",
			reported: true,
		},
		{
			name: "missing time",
			page: func(p *page) {
				p.timeLeft = ""
			},
			kind:     auction.KindNoTime,
			reported: true,
		},
		{
			name: "missing bid table",
			page: func(p *page) {
				p.noTable = true
			},
			kind:     auction.KindNoHighBid,
			reported: true,
		},
		{
			name: "header without a bidder column",
			page: func(p *page) {
				p.header = []string{"", "Name", "Bid Amount", "Bid Time", ""}
			},
			kind:     auction.KindNoHighBid,
			reported: true,
		},
		{
			name: "unreadable table, active outbid",
			page: func(p *page) {
				p.rows = [][]string{{"a", "b", "c"}}
			},
			kind:     auction.KindNoHighBid,
			reported: true,
		},
		{
			name: "unreadable table, unknown state",
			page: func(p *page) {
				p.name = "PageViewBids_Pending_HighBidder"
				p.rows = [][]string{{"", "Something unexpected"}}
			},
			kind:     auction.KindNoHighBid,
			reported: true,
		},
		{
			name: "unreadable leader price",
			page: func(p *page) {
				p.rows[0][2] = "--"
			},
			kind:     auction.KindConvPrice,
			detail:   "--",
			reported: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			raw := test.raw
			if raw == "" {
				p := activePage()
				test.page(&p)
				raw = p.String()
			}

			a := auction.New("123", "15.00")
			a.SetError(auction.KindNetwork, "stale")

			reporter := &recordingReporter{}
			opts := parseOptions()
			opts.Reporter = reporter
			err := Parse(context.Background(), []byte(raw), start, a, opts)
			require.True(t, auction.IsKind(err, test.kind), "%v", err)
			require.Equal(t, test.kind, a.ErrorKind)
			require.Equal(t, test.detail, a.ErrorDetail)
			require.Equal(t, test.reported, len(reporter.reasons) == 1, reporter.reasons)
		})
	}
}

func TestParseDebugAdoptsItemNumber(t *testing.T) {
	p := activePage()
	p.itemID = "987654"

	a := auction.New("", "15.00")
	opts := parseOptions()
	opts.Debug = true
	require.NoError(t, Parse(context.Background(), []byte(p.String()), start, a, opts))
	require.Equal(t, "987654", a.ID)
}

func TestParseIsIdempotent(t *testing.T) {
	page := []byte(activePage().String())
	a := auction.New("123", "15.00")
	require.NoError(t, Parse(context.Background(), page, start, a, parseOptions()))
	first := *a
	require.NoError(t, Parse(context.Background(), page, start, a, parseOptions()))
	require.Equal(t, first, *a)
}

func TestDecodeViewBids(t *testing.T) {
	testCases := []struct {
		name     string
		expected pageKind
	}{
		{"PageViewBids", pageKind{page: pageViewBids}},
		{"PageViewBids_Active", pageKind{page: pageViewBids, state: stateActive}},
		{"PageViewBids_Closed_HighBidder", pageKind{pageViewBids, stateClosed, resultHighBidder}},
		{"PageViewBids__Active__None", pageKind{pageViewBids, stateActive, resultNone}},
		{"PageViewBids_Open_Outbid", pageKind{page: pageViewBids, result: resultOutbid}},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, decodeViewBids(test.name), test.name)
	}
}

func TestParseSeconds(t *testing.T) {
	testCases := []struct {
		text     string
		expected int64
	}{
		{"1 day 2 hours", 93600},
		{"45 min", 2700},
		{"30 sec", 30},
		{"2 days 3 hours 4 mins 5 secs", 2*86400 + 3*3600 + 4*60 + 5},
		{"  12 mins 1 sec", 721},
		{"1 hour", 3600},
		{"--", 1},
		{"-- ", 1},
		{"", 1},
		{"   ", 1},
		{"auction has ended", 0},
		{"3 weeks", -1},
		{"soon", -1},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, ParseSeconds(test.text), test.text)
	}
}
