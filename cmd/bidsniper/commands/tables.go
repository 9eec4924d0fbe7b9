package commands

import (
	"bidsniper/lib/auction"
	"bidsniper/lib/scrapers/ebay/watching"
	"bidsniper/services/sniper"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func errorText(a *auction.Auction) string {
	err := a.Err()
	if err == nil {
		return ""
	}
	return err.Error()
}

func remainText(a *auction.Auction, now time.Time) string {
	if a.EndTime.IsZero() {
		return a.RemainText
	}
	remain := a.EndTime.Sub(now).Truncate(time.Second)
	if remain <= 0 {
		return "ended"
	}
	return remain.String()
}

func renderAuctions(out io.Writer, auctions []*auction.Auction, now time.Time) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Item", "Title", "Price", "Bid", "Bids", "Quantity", "Time left", "Winning", "Error"})
	for _, a := range auctions {
		winning := ""
		if a.Winning > 0 {
			winning = fmt.Sprint(a.Winning)
		}
		t.AppendRow(table.Row{
			a.ID,
			a.Title,
			fmt.Sprintf("%s %.2f", a.Currency, a.Price),
			a.BidPriceText,
			a.Bids,
			a.Quantity,
			remainText(a, now),
			winning,
			errorText(a),
		})
	}
	t.Render()
}

func renderResults(out io.Writer, summary sniper.Summary) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Item", "Title", "Bid", "Won", "Error"})
	for _, r := range summary.Results {
		t.AppendRow(table.Row{r.Auction.ID, r.Auction.Title, r.Auction.BidPriceText, r.Won, errorText(r.Auction)})
	}
	t.AppendFooter(table.Row{"", "", "Total", fmt.Sprintf("%d of %d", summary.Won, summary.Wanted), ""})
	t.Render()
}

func renderWatching(out io.Writer, items []watching.Item) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Item", "Description", "Seller", "Feedback", "Time left", "Price", "Bids", "Shipping"})
	for _, item := range items {
		feedback := item.Feedback
		if item.Rating != "" {
			feedback = fmt.Sprintf("%s (%s)", item.Feedback, item.Rating)
		}
		t.AppendRow(table.Row{
			item.ID,
			item.Description,
			item.Seller,
			feedback,
			item.TimeLeft,
			item.Price,
			item.Bids,
			item.Shipping,
		})
	}
	t.Render()
}
