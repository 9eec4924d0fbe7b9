package sniper

import (
	"bidsniper/lib/auction"
	"bidsniper/lib/scrapers/ebay/core"
	"context"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	unknownRemain = math.MinInt64

	maxWatchErrors = 50
	maxLatency     = 600
	// how close to the bid the session is made fresh and the token fetched
	loginRemain = 300
	tokenRemain = 150
	tokenTries  = 5
	// the site's usual maintenance takes two hours
	unavailableSleep = time.Hour
)

// SleepFor returns how long to sleep when remain seconds are left before
// the bid. The schedule wakes up about a day, two hours, one hour, five
// minutes and two minutes before the bid.
func SleepFor(remain int64) time.Duration {
	var seconds int64
	switch {
	case remain <= 150:
		seconds = remain
	case remain < 720:
		seconds = remain - 120
	case remain < 3900:
		seconds = remain - 600
	case remain < 10800:
		seconds = remain - 3600
	case remain < 97200:
		seconds = remain - 7200
	default:
		seconds = 86400
	}
	return time.Duration(seconds) * time.Second
}

// remaining is the number of seconds left before the bid has to be sent.
func (s *Sniper) remaining(a *auction.Auction) int64 {
	return a.EndUnix() - s.clock.Now().Unix() - a.Latency - int64(s.opts.BidTime/time.Second)
}

// watch follows a until it is time to bid. By then the session is fresh
// and a holds a bid token, unless an error is left on a.
func (s *Sniper) watch(ctx context.Context, a *auction.Auction) error {
	ctx, span := tracer.Start(ctx, "watch")
	defer span.End()
	span.SetAttributes(attribute.String("auction", a.ID))

	err := s.watchLoop(ctx, a)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stopped watching")
	}
	return err
}

func (s *Sniper) watchLoop(ctx context.Context, a *auction.Auction) error {
	slog.InfoContext(
		ctx, "watching",
		"auction", a.ID,
		"price", a.BidPriceText,
		"quantity", s.quantity,
		"bid_time", s.opts.BidTime,
	)

	errorCount := 0
	remain := int64(unknownRemain)
	for {
		start := s.clock.Now()
		ttfb, err := s.getInfoTiming(ctx, a)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if ttfb.IsZero() {
			ttfb = s.clock.Now()
		}
		latency := int64(ttfb.Sub(start) / time.Second)
		if latency >= 0 && latency < maxLatency {
			a.Latency = latency
		}
		slog.DebugContext(ctx, "latency", "auction", a.ID, "seconds", a.Latency)

		switch {
		case err == nil:
			if !a.IsValidBidPrice() {
				return a.SetError(auction.KindBidPrice, "")
			}
			remain = s.remaining(a)
		case auction.IsKind(err, auction.KindUnavailable):
			// does not count towards the error limit
			s.logError(ctx, a, err)
			if remain >= 0 {
				remain = s.remaining(a)
			}
			if remain == unknownRemain || remain > 86400 {
				slog.InfoContext(ctx, "site unavailable, sleeping", "auction", a.ID, "duration", unavailableSleep)
				err := s.clock.Sleep(ctx, unavailableSleep)
				if err != nil {
					return err
				}
				continue
			}
		case remain == unknownRemain:
			// the first load gets a few more chances, then the error is final
			s.logError(ctx, a, err)
			for i := 0; err != nil && i < 3 && auction.IsKind(err, auction.KindNoTitle); i++ {
				err = s.GetInfo(ctx, a)
			}
			if err != nil {
				return err
			}
			remain = s.remaining(a)
		default:
			s.logError(ctx, a, err)
			errorCount++
			if errorCount > maxWatchErrors {
				return a.SetError(auction.KindTooMany, "")
			}
			slog.WarnContext(ctx, "cannot load auction, will try again after sleeping", "auction", a.ID, "errors", errorCount)
			remain = s.remaining(a)
		}

		if remain <= loginRemain {
			err := s.session.Login(ctx, a, core.DefaultLoginInterval-10*time.Minute)
			if err != nil {
				return err
			}
			remain = s.remaining(a)
		}

		if remain <= tokenRemain && a.Token == "" && a.ErrorKind == auction.KindNone {
			s.fetchToken(ctx, a)
			if a.ErrorKind != auction.KindNone && a.ErrorKind != auction.KindHighBidder {
				slog.ErrorContext(ctx, "cannot get bid token", "auction", a.ID)
				return a.Err()
			}
		}

		remain = s.remaining(a)
		if remain <= 0 {
			return nil
		}

		sleep := SleepFor(remain)
		slog.InfoContext(ctx, "sleeping", "auction", a.ID, "duration", sleep)
		err = s.clock.Sleep(ctx, sleep)
		if err != nil {
			return err
		}

		remain = s.remaining(a)
		if remain <= 0 {
			return nil
		}
	}
}

// fetchToken makes a few attempts at getting a bid token, the outcome is
// left on a.
func (s *Sniper) fetchToken(ctx context.Context, a *auction.Auction) {
	for i := 0; i < tokenTries; i++ {
		err := s.preBid(ctx, a)
		// the page loaded but made no sense, another try will not help
		if err == nil || auction.IsKind(err, auction.KindBidToken) {
			return
		}
		if auction.IsKind(err, auction.KindMustSignIn) && s.session.ForceLogin(ctx, a) != nil {
			return
		}
	}
}
