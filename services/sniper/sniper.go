// Package sniper watches auctions and places a single bid on each just
// before it closes.
package sniper

import (
	"bidsniper/internal/chrono"
	"bidsniper/lib/auction"
	"bidsniper/lib/htmlutil"
	"bidsniper/lib/scrapers/ebay/core"
	"bidsniper/lib/scrapers/ebay/history"
	"bidsniper/lib/scrapers/ebay/outcome"
	"bidsniper/lib/scrapers/ebay/watching"
	"bidsniper/lib/textutil"
	"context"
	"log/slog"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// Recorder keeps a history of observed auctions and placed bids. Failing
// to record is logged and otherwise ignored.
type Recorder interface {
	RecordSnapshot(ctx context.Context, t time.Time, a *auction.Auction) error
	RecordBid(ctx context.Context, t time.Time, a *auction.Auction, quantity int) error
}

type nopRecorder struct{}

func (nopRecorder) RecordSnapshot(context.Context, time.Time, *auction.Auction) error {
	return nil
}

func (nopRecorder) RecordBid(context.Context, time.Time, *auction.Auction, int) error {
	return nil
}

type Options struct {
	// BidTime is how long before the close the bid is placed, zero bids
	// right away.
	BidTime time.Duration
	// Quantity is the number of items wanted over the whole batch.
	Quantity int
	// DisableBidding goes through the motions without sending the bid.
	DisableBidding bool
	// Reduce lowers Quantity by the items already won when a batch starts.
	Reduce bool
	// Delay is waited before each fetch of a batch's first pass.
	Delay time.Duration
	Debug bool
}

type Params struct {
	Session *core.Session
	// Clock defaults to the system clock.
	Clock chrono.TimeAPI
	// Reporter defaults to core.NopReporter.
	Reporter core.Reporter
	// Recorder is optional.
	Recorder Recorder
	Options  Options
}

type Sniper struct {
	session  *core.Session
	fetcher  core.Fetcher
	hosts    core.Hosts
	clock    chrono.TimeAPI
	reporter core.Reporter
	recorder Recorder
	opts     Options

	// quantity is the number of items still wanted
	quantity int
}

func NewSniper(params Params) *Sniper {
	if params.Clock == nil {
		params.Clock = chrono.NewStandardTime()
	}
	if params.Reporter == nil {
		params.Reporter = core.NopReporter{}
	}
	if params.Recorder == nil {
		params.Recorder = nopRecorder{}
	}
	if params.Options.Quantity <= 0 {
		params.Options.Quantity = 1
	}
	return &Sniper{
		session:  params.Session,
		fetcher:  params.Session.Fetcher(),
		hosts:    params.Session.Hosts(),
		clock:    params.Clock,
		reporter: params.Reporter,
		recorder: params.Recorder,
		opts:     params.Options,
		quantity: params.Options.Quantity,
	}
}

// Quantity returns the number of items still wanted.
func (s *Sniper) Quantity() int {
	return s.quantity
}

func (s *Sniper) historyOptions() history.Options {
	return history.Options{
		Username: s.session.Username(),
		BidTime:  s.opts.BidTime,
		Debug:    s.opts.Debug,
		Clock:    s.clock,
		Reporter: s.reporter,
	}
}

func (s *Sniper) logError(ctx context.Context, a *auction.Auction, err error) {
	kind := auction.KindOf(err)
	auctionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
	slog.WarnContext(ctx, "auction error", "auction", a.ID, "kind", kind.String(), "err", err)
}

// GetInfo refreshes a from its bid history page.
func (s *Sniper) GetInfo(ctx context.Context, a *auction.Auction) error {
	_, err := s.getInfoTiming(ctx, a)
	return err
}

// getInfoTiming is GetInfo that also returns when the first byte of the
// last page fetched arrived, zero when unknown.
func (s *Sniper) getInfoTiming(ctx context.Context, a *auction.Auction) (time.Time, error) {
	ctx, span := tracer.Start(ctx, "GetInfo")
	defer span.End()
	span.SetAttributes(attribute.String("auction", a.ID))

	err := s.session.Login(ctx, a, core.DefaultLoginInterval)
	if err != nil {
		return time.Time{}, err
	}

	var ttfb time.Time
	for i := 0; i < 3; i++ {
		start := s.clock.Now()
		doc, ferr := s.fetcher.Fetch(ctx, s.hosts.BidHistoryURL(a.ID), "")
		if ferr != nil {
			err = a.Adopt(ferr)
			break
		}
		ttfb = doc.TimeToFirstByte

		err = history.Parse(ctx, doc.Body, start, a, s.historyOptions())
		if err == nil {
			rerr := s.recorder.RecordSnapshot(ctx, start, a)
			if rerr != nil {
				slog.WarnContext(ctx, "failed to record snapshot", "auction", a.ID, "err", rerr)
			}
			break
		}
		if i == 0 && auction.IsKind(err, auction.KindMustSignIn) {
			lerr := s.session.ForceLogin(ctx, a)
			if lerr != nil {
				err = lerr
				break
			}
			continue
		}
		if !auction.IsKind(err, auction.KindNoTime) {
			break
		}
		// time left is sometimes blank, the next load usually has it
		serr := s.clock.Sleep(ctx, 2*time.Second)
		if serr != nil {
			err = serr
			break
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get auction info")
	}
	return ttfb, err
}

// preBid asks the site for the token the bid has to carry.
func (s *Sniper) preBid(ctx context.Context, a *auction.Auction) error {
	ctx, span := tracer.Start(ctx, "preBid")
	defer span.End()
	span.SetAttributes(attribute.String("auction", a.ID))

	err := s.session.Login(ctx, a, core.DefaultLoginInterval)
	if err != nil {
		return err
	}

	quantity := auction.BidQuantity(s.quantity, a.Quantity)
	slog.DebugContext(ctx, "requesting bid token", "auction", a.ID, "quantity", quantity)
	doc, err := s.fetcher.Fetch(ctx, s.hosts.PreBidURL(a.ID, a.BidPriceText, quantity), "")
	if err != nil {
		return a.Adopt(err)
	}

	token, ok := outcome.ParseBidToken(doc.Body)
	if ok {
		a.Token = token
		a.ResetError()
		slog.DebugContext(ctx, "got bid token", "auction", a.ID)
		return nil
	}

	info, _ := htmlutil.ReadPageInfo(doc.Body)
	kind, ok := outcome.ClassifyBidError(info)
	if ok {
		// the site refused the bid before it was placed
		a.BidResult = auction.BidResultFailure
	} else {
		s.reporter.Report(ctx, "prebid", a, doc.Body, "cannot find bid token")
		kind = auction.KindBidToken
	}
	err = a.SetError(kind, "")
	span.RecordError(err)
	span.SetStatus(codes.Error, "no bid token")
	return err
}

// bid places the bid, a must already hold a token.
func (s *Sniper) bid(ctx context.Context, a *auction.Auction) error {
	ctx, span := tracer.Start(ctx, "bid")
	defer span.End()
	span.SetAttributes(attribute.String("auction", a.ID))

	if a.Token == "" {
		return a.SetError(auction.KindBidToken, "")
	}
	err := s.session.Login(ctx, a, core.DefaultLoginInterval)
	if err != nil {
		return err
	}

	quantity := auction.BidQuantity(s.quantity, a.Quantity)
	username := url.QueryEscape(s.session.Username())
	target := s.hosts.BidURL(a.ID, a.BidPriceText, quantity, a.Token, username)
	logURL := s.hosts.BidURL(a.ID, a.BidPriceText, quantity, textutil.Stars(a.Token), textutil.Stars(username))

	if s.opts.DisableBidding {
		slog.InfoContext(ctx, "bidding disabled", "auction", a.ID, "url", logURL)
		a.BidResult = auction.BidResultSuccess
		s.recordBid(ctx, a, quantity, "disabled")
		return nil
	}

	doc, err := s.fetcher.Fetch(ctx, target, logURL)
	if err != nil {
		err = a.Adopt(err)
		s.recordBid(ctx, a, quantity, auction.KindOf(err).String())
		return err
	}

	err = s.parseBid(ctx, a, doc.Body)
	result := "accepted"
	if err != nil {
		result = auction.KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, "bid refused")
	}
	s.recordBid(ctx, a, quantity, result)
	return err
}

// parseBid records the outcome of a bid. A page that cannot be read is
// captured and treated as a placed bid so that it is not placed again.
func (s *Sniper) parseBid(ctx context.Context, a *auction.Auction, body []byte) error {
	a.BidResult = auction.BidResultUnset
	info, _ := htmlutil.ReadPageInfo(body)
	kind, ok := outcome.ClassifyBid(info)
	if !ok {
		s.reporter.Report(ctx, "bid", a, body, "unknown page name "+info.PageName)
		slog.WarnContext(ctx, "cannot determine result of bid", "auction", a.ID, "page", info.PageName)
		return nil
	}
	return outcome.Apply(a, kind)
}

func (s *Sniper) recordBid(ctx context.Context, a *auction.Auction, quantity int, result string) {
	bidsSubmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	err := s.recorder.RecordBid(ctx, s.clock.Now(), a, quantity)
	if err != nil {
		slog.WarnContext(ctx, "failed to record bid", "auction", a.ID, "err", err)
	}
}

// Snipe watches a until it is time to bid, bids and then checks the
// result. It returns the number of items won, which is also taken off
// the quantity still wanted.
func (s *Sniper) Snipe(ctx context.Context, a *auction.Auction) int {
	ctx, span := tracer.Start(ctx, "Snipe")
	defer span.End()
	span.SetAttributes(attribute.String("auction", a.ID))

	slog.InfoContext(
		ctx, "sniping",
		"auction", a.ID,
		"price", a.BidPriceText,
		"quantity", s.quantity,
		"user", textutil.Stars(s.session.Username()),
		"bid_time", s.opts.BidTime,
	)

	err := s.session.Login(ctx, a, core.DefaultLoginInterval)
	if err != nil {
		s.logError(ctx, a, err)
		return 0
	}

	if s.opts.BidTime == 0 {
		err = s.preBid(ctx, a)
	} else {
		err = s.watch(ctx, a)
	}
	highBidder := a.ErrorKind == auction.KindHighBidder
	if err != nil {
		s.logError(ctx, a, err)
		if !highBidder {
			return 0
		}
	}

	if a.Expired(s.clock.Now()) {
		s.logError(ctx, a, a.SetError(auction.KindEnded, ""))
		return 0
	}

	if !highBidder {
		slog.InfoContext(ctx, "bidding", "auction", a.ID)
		for {
			err := s.bid(ctx, a)
			if err == nil {
				break
			}
			if auction.IsKind(err, auction.KindMustSignIn) && s.session.ForceLogin(ctx, a) == nil {
				continue
			}
			s.logError(ctx, a, err)
			return 0
		}
	}

	// the close is checked again in case latency threw the timing off
	shortLead := s.opts.BidTime > 0 && s.opts.BidTime < time.Minute
	for {
		if shortLead {
			seconds := max(a.EndUnix()-s.clock.Now().Unix(), 0) + 2
			slog.InfoContext(ctx, "waiting for auction to complete", "auction", a.ID, "seconds", seconds)
			err := s.clock.Sleep(ctx, time.Duration(seconds)*time.Second)
			if err != nil {
				break
			}
		}

		slog.InfoContext(ctx, "post-bid info", "auction", a.ID)
		err := s.GetInfo(ctx, a)
		if err != nil {
			s.logError(ctx, a, err)
		}
		if shortLead && a.Remain > 0 && a.Remain < 60 {
			continue
		}
		break
	}

	won := a.Won
	if won == -1 {
		won = min(s.quantity, a.Quantity)
		slog.InfoContext(ctx, "unknown outcome, assuming items won", "auction", a.ID, "won", won)
	} else {
		slog.InfoContext(ctx, "items won", "auction", a.ID, "won", won)
	}
	s.quantity -= won
	return won
}

// Watching lists the items on the user's watch list.
func (s *Sniper) Watching(ctx context.Context) ([]watching.Item, error) {
	ctx, span := tracer.Start(ctx, "Watching")
	defer span.End()

	err := s.session.Login(ctx, nil, core.DefaultLoginInterval)
	if err != nil {
		return nil, err
	}
	doc, err := s.fetcher.Fetch(ctx, s.hosts.WatchingURL(), "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch watch list")
		return nil, err
	}
	return watching.Parse(ctx, doc.Body)
}
