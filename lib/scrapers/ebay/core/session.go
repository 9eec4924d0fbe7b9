package core

import (
	"bidsniper/internal/chrono"
	"bidsniper/lib/auction"
	"bidsniper/lib/htmlutil"
	"bidsniper/lib/scrapers/ebay/outcome"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// DefaultLoginInterval is how long a sign in is trusted before the next
// Login signs in again.
const DefaultLoginInterval = 12 * time.Hour

const maskedPassword = "*****"

type Credentials struct {
	Username string
	Password string
}

type SessionOptions struct {
	Fetcher     Fetcher
	Hosts       Hosts
	Credentials Credentials
	// Clock defaults to the system clock.
	Clock chrono.TimeAPI
	// Reporter defaults to NopReporter.
	Reporter Reporter
}

// Session keeps a signed in session with the site alive.
type Session struct {
	fetcher  Fetcher
	hosts    Hosts
	creds    Credentials
	clock    chrono.TimeAPI
	reporter Reporter

	mutex     sync.Mutex
	lastLogin time.Time
}

func NewSession(opts SessionOptions) *Session {
	if opts.Clock == nil {
		opts.Clock = chrono.NewStandardTime()
	}
	if opts.Reporter == nil {
		opts.Reporter = NopReporter{}
	}
	return &Session{
		fetcher:  opts.Fetcher,
		hosts:    opts.Hosts.WithDefaults(),
		creds:    opts.Credentials,
		clock:    opts.Clock,
		reporter: opts.Reporter,
	}
}

func (s *Session) Username() string {
	return s.creds.Username
}

func (s *Session) Hosts() Hosts {
	return s.hosts
}

func (s *Session) Fetcher() Fetcher {
	return s.fetcher
}

// LastLogin returns when the session last signed in successfully, zero if
// it never has.
func (s *Session) LastLogin() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastLogin
}

type sessionResetter interface {
	ResetSession() error
}

// Login signs in unless the previous successful sign in is at most
// interval old, a zero interval always signs in. Failures are recorded on
// a, which may be nil when no auction is involved.
func (s *Session) Login(ctx context.Context, a *auction.Auction, interval time.Duration) error {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if a == nil {
		a = auction.New("", "")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.clock.Now()
	if interval > 0 && !s.lastLogin.IsZero() && now.Sub(s.lastLogin) <= interval {
		span.SetAttributes(attribute.Bool("cached", true))
		return nil
	}

	err := s.login(ctx, a)
	result := "ok"
	if err != nil {
		result = auction.KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to sign in")
	}
	logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	return err
}

// ForceLogin signs in regardless of when the last sign in happened.
func (s *Session) ForceLogin(ctx context.Context, a *auction.Auction) error {
	s.mutex.Lock()
	s.lastLogin = time.Time{}
	s.mutex.Unlock()
	return s.Login(ctx, a, 0)
}

func (s *Session) login(ctx context.Context, a *auction.Auction) error {
	slog.InfoContext(ctx, "signing in", "user", s.creds.Username)

	if resetter, ok := s.fetcher.(sessionResetter); ok {
		err := resetter.ResetSession()
		if err != nil {
			return a.SetError(auction.KindLogin, err.Error())
		}
	}

	_, err := s.fetcher.Fetch(ctx, s.hosts.SignInURL(), "")
	if err != nil {
		return a.Adopt(err)
	}

	username := url.QueryEscape(s.creds.Username)
	target := s.hosts.SignInWelcomeURL(username, url.QueryEscape(s.creds.Password))
	logURL := s.hosts.SignInWelcomeURL(username, maskedPassword)
	doc, err := s.fetcher.Fetch(ctx, target, logURL)
	if err != nil {
		return a.Adopt(err)
	}

	info, _ := htmlutil.ReadPageInfo(doc.Body)
	kind, ok := outcome.ClassifyLogin(info)
	if !ok {
		suggestion, score := outcome.Suggest(info.PageName)
		s.reporter.Report(ctx, "login", a, doc.Body, fmt.Sprintf(
			"unrecognized sign in page: name=%q src=%q closest=%q (%.2f)",
			info.PageName, info.SrcID, suggestion, score,
		))
	}
	if kind != auction.KindNone {
		return a.SetError(kind, "")
	}

	s.lastLogin = s.clock.Now()
	slog.DebugContext(ctx, "signed in", "user", s.creds.Username)
	return nil
}
