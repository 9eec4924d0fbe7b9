// Package history reads the state of an auction off its bid history page.
package history

import (
	"bidsniper/internal/chrono"
	"bidsniper/lib/auction"
	"bidsniper/lib/htmlutil"
	"bidsniper/lib/scrapers/ebay/core"
	"bidsniper/lib/telemetry"
	"bidsniper/lib/textutil"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("bidsniper.lib.scrapers.ebay.history")

type Options struct {
	// Username is compared against bidders to tell whether we are winning.
	Username string
	// BidTime is how long before the close the bid is placed.
	BidTime time.Duration
	// Debug takes the item number from the page instead of checking it,
	// for parsing saved pages.
	Debug bool
	// Clock defaults to the system clock.
	Clock chrono.TimeAPI
	// Reporter defaults to core.NopReporter.
	Reporter core.Reporter
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = chrono.NewStandardTime()
	}
	if o.Reporter == nil {
		o.Reporter = core.NopReporter{}
	}
	return o
}

type parser struct {
	ctx  context.Context
	page []byte
	t    *htmlutil.Tokenizer
	a    *auction.Auction
	opts Options
	kind pageKind
}

// Parse updates a from a bid history page fetched at start. On failure
// the error is also recorded on a.
func Parse(ctx context.Context, page []byte, start time.Time, a *auction.Auction, opts Options) error {
	ctx, span := tracer.Start(ctx, "Parse")
	defer span.End()
	span.SetAttributes(attribute.String("auction", a.ID))

	a.ResetError()
	p := &parser{
		ctx:  ctx,
		page: page,
		t:    htmlutil.NewTokenizer(page),
		a:    a,
		opts: opts.withDefaults(),
	}

	var err error
	info, ok := htmlutil.ReadPageInfo(page)
	if ok {
		err = p.parse(info, start)
	} else {
		err = p.fail(auction.KindNoTitle, "", "page info not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse bid history")
	}
	return err
}

// fail records kind on the auction and captures the page for inspection.
func (p *parser) fail(kind auction.Kind, detail, reason string) error {
	p.opts.Reporter.Report(p.ctx, "history", p.a, p.page, reason)
	return p.a.SetError(kind, detail)
}

func (p *parser) parse(info htmlutil.PageInfo, start time.Time) error {
	a := p.a
	if info.SrcID == "Captcha.xsl" || strings.HasPrefix(info.PageName, "Security Measure") {
		return a.SetError(auction.KindCaptcha, "")
	}

	switch {
	case strings.HasPrefix(info.PageName, "PageViewBids"):
		p.kind = decodeViewBids(info.PageName)
		// a bad item number gets an error page under the same name
		for {
			text, ok := p.t.NextText()
			if !ok || text == "Bid History" {
				break
			}
			if text == "Unknown Item" {
				return a.SetError(auction.KindBadItem, "")
			}
		}
	case strings.HasPrefix(info.PageName, "PageViewTransactions"):
		p.kind = pageKind{page: pageViewTransactions}
	case info.PageName == "PageSignIn":
		return a.SetError(auction.KindMustSignIn, "")
	default:
		return p.fail(auction.KindNoTitle, "", fmt.Sprintf("unknown page name %q", info.PageName))
	}

	err := p.parseItemNumber()
	if err != nil {
		return err
	}
	err = p.parseTitle()
	if err != nil {
		return err
	}
	err = p.parseDetails()
	if err != nil {
		return err
	}
	err = p.parseRemaining(start)
	if err != nil {
		return err
	}
	if p.parseBidCount() {
		return nil
	}
	return p.parseBidTable()
}

// findLabeled moves past the tag carrying the first of markers found and
// returns the second run of text after it, the first being its label.
func (p *parser) findLabeled(markers ...string) (value string, found, ok bool) {
	p.t.Reset()
	for _, marker := range markers {
		if p.t.Find(marker) {
			found = true
			break
		}
	}
	if !found || !p.t.SkipPast('>') {
		return "", found, false
	}
	p.t.NextText()
	value, ok = p.t.NextText()
	return value, true, ok
}

func (p *parser) parseItemNumber() error {
	id, found, ok := p.findLabeled(`"BHCtBidLabel"`, `"vizItemNum"`, `"BHitemNo"`)
	if !found || !ok {
		return p.fail(auction.KindBadItem, "", "no item number")
	}
	if p.opts.Debug {
		p.a.ID = id
		return nil
	}
	if id != p.a.ID {
		return p.fail(auction.KindBadItem, "", fmt.Sprintf("mismatched item number %s", id))
	}
	return nil
}

func (p *parser) parseTitle() error {
	title, found, ok := p.findLabeled(`"itemTitle"`, `"BHitemTitle"`, `"BHitemDesc"`)
	if !found {
		return p.fail(auction.KindBadItem, "", "item title or description not found")
	}
	if !ok {
		return p.fail(auction.KindBadItem, "", "item title not found")
	}
	p.a.Title = title
	slog.InfoContext(p.ctx, "auction", "auction", p.a.ID, "title", title)
	return nil
}

const (
	gotPrice = 1 << iota
	gotQuantity
	gotShipping

	gotEverything = gotPrice | gotQuantity | gotShipping
)

func isPriceLabel(label string) bool {
	for _, known := range []string{"Current bid:", "Winning bid:", "Your maximum bid:", "price:"} {
		if strings.EqualFold(label, known) {
			return true
		}
	}
	return false
}

// parseDetails reads price, reserve, quantity and shipping. A missing
// quantity means 1.
func (p *parser) parseDetails() error {
	a := p.a
	t := p.t
	t.Reset()
	a.Quantity = 1

	got := 0
	for got != gotEverything && t.Find(`"BHCtBid"`) {
		if !t.SkipPast('>') {
			break
		}
		label, ok := t.NextText()
		if !ok {
			break
		}

		switch {
		case isPriceLabel(label):
			text, ok := t.NextText()
			if !ok {
				return p.fail(auction.KindNoPrice, "", "item price not found")
			}
			a.Price = a.ObservePrice(text)
			if a.Price < 0.01 {
				return p.fail(auction.KindConvPrice, text, "item price could not be converted")
			}
			got |= gotPrice

			mark := t.Offset()
			next, _ := t.NextText()
			a.Reserve = strings.EqualFold(next, "Reserve not met")
			if !a.Reserve {
				t.Seek(mark)
			}
		case strings.EqualFold(label, "Quantity:"):
			text, ok := t.NextText()
			if !ok {
				return p.fail(auction.KindNoQuantity, "", "item quantity not found")
			}
			a.Quantity = 1
			if isDigit(text[0]) {
				n, _, ok := leadingInt(text)
				if !ok || n < 0 {
					return p.fail(auction.KindNoQuantity, "", "item quantity could not be converted")
				}
				a.Quantity = int(n)
			}
			got |= gotQuantity
		case strings.EqualFold(label, "Shipping:"):
			text, ok := t.NextText()
			if ok {
				a.Shipping = text
			}
			got |= gotShipping
		}
	}
	return nil
}

func (p *parser) parseRemaining(start time.Time) error {
	a := p.a
	t := p.t
	t.Reset()

	var remain int64
	switch {
	case a.Quantity == 0 || t.Find("Time Ended:"):
		a.RemainText = "--"
		remain = 0
	case t.Find("timeLeft"):
		t.SkipPast('>')
		raw, _ := t.NextText()
		a.RemainText = raw
		switch {
		// labels that follow an empty time left
		case strings.EqualFold(raw, "Duration:"), strings.EqualFold(raw, "Refresh"):
			a.RemainText = ""
			remain = 1
		// shows up between an empty time left and the auction ending
		case textutil.HasPrefixFold(raw, "undefined"):
			remain = 1
		default:
			remain = ParseSeconds(raw)
		}
		if remain < 0 {
			return p.fail(auction.KindBadTime, raw, "remaining time could not be converted")
		}
	default:
		return p.fail(auction.KindNoTime, "", "remaining time not found")
	}

	a.SetRemain(start, remain)
	args := []any{"auction", a.ID, "remaining", a.RemainText, "seconds", remain}
	if remain > 0 && !p.opts.Debug {
		args = append(args, "end_time", a.EndTime.Local().Format("02/01/2006 15:04:05"))
	}
	slog.InfoContext(p.ctx, "time remaining", args...)
	return nil
}

// parseBidCount reads the bid counter, it reports true when there are no
// bids and nothing is left to parse.
func (p *parser) parseBidCount() bool {
	a := p.a
	t := p.t
	t.Reset()
	a.Bids = -1
	if !t.Find("Total Bids:") {
		return false
	}
	t.NextText()
	text, ok := t.NextText()
	if !ok {
		return false
	}
	n, _, ok := leadingInt(text)
	if !ok || n < 0 {
		return false
	}
	a.Bids = int(n)
	if a.Bids > 0 {
		return false
	}

	a.QuantityBid = 0
	a.Price = 0
	p.logNoBids()
	return true
}

func (p *parser) logNoBids() {
	slog.InfoContext(
		p.ctx, "no bids",
		"auction", p.a.ID,
		"bids", p.a.Bids,
		"max_bid", p.a.BidPriceText,
	)
}
