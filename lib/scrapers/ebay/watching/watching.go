// Package watching reads the "watched items" list of a signed in user.
package watching

import (
	"bidsniper/lib/htmlutil"
	"bidsniper/lib/telemetry"
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("bidsniper.lib.scrapers.ebay.watching")

type Item struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Seller      string `json:"seller"`
	Feedback    string `json:"feedback"`
	Rating      string `json:"rating"`
	TimeLeft    string `json:"time_left"`
	Price       string `json:"price"`
	Bids        string `json:"bids"`
	Shipping    string `json:"shipping"`
}

var itemNumberRegex = regexp.MustCompile(`\d+`)

// nth returns the nth run of text or an empty string.
func nth(runs []string, n int) string {
	if n < len(runs) {
		return runs[n]
	}
	return ""
}

func parseRow(cells *goquery.Selection) Item {
	var item Item
	cells.Each(func(column int, cell *goquery.Selection) {
		runs := htmlutil.TextRuns(cell.Get(0))
		switch column {
		case 0:
			// the item number is the value of the row's checkbox, rows
			// without one print it instead
			value, ok := cell.Find("input[value]").Attr("value")
			if !ok {
				value = htmlutil.GetText(cell.Get(0))
			}
			item.ID = itemNumberRegex.FindString(value)
		case 2:
			if len(runs) > 0 && strings.Contains(runs[0], "ENDING SOON") {
				runs = runs[1:]
			}
			item.Description = nth(runs, 0)
			item.Seller = nth(runs, 2)
			item.Feedback = nth(runs, 5)
			item.Rating = nth(runs, 7)
		case 3:
			item.TimeLeft = nth(runs, 0)
		case 4:
			item.Price = nth(runs, 0)
			item.Bids = nth(runs, 2)
			item.Shipping = nth(runs, 4)
		}
	})
	return item
}

// Parse returns every item listed in the watched items tables of a page,
// the first row of each table is a header.
func Parse(ctx context.Context, page []byte) ([]Item, error) {
	ctx, span := tracer.Start(ctx, "Parse")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	var items []Item
	doc.Find("table.my_itl-iT").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
			return row.Closest("table").IsSelection(table)
		})
		rows.Slice(min(1, rows.Length()), rows.Length()).Each(func(_ int, row *goquery.Selection) {
			items = append(items, parseRow(row.ChildrenFiltered("td, th")))
		})
	})

	span.SetAttributes(attribute.Int("items", len(items)))
	return items, nil
}
