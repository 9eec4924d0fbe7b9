package core_test

import (
	"bidsniper/internal/chrono"
	"bidsniper/lib/auction"
	"bidsniper/lib/scrapers/ebay/core"
	"bidsniper/lib/testutil"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	reasons []string
}

func (r *recordingReporter) Report(_ context.Context, where string, _ *auction.Auction, _ []byte, reason string) {
	r.reasons = append(r.reasons, where+": "+reason)
}

func newSession(fetcher *testutil.FakeFetcher, clock *chrono.FakeTime, reporter core.Reporter) *core.Session {
	return core.NewSession(core.SessionOptions{
		Fetcher: fetcher,
		Credentials: core.Credentials{
			Username: "sniper",
			Password: "p&ss word",
		},
		Clock:    clock,
		Reporter: reporter,
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	clock := chrono.NewFakeTime(time.Unix(1_700_000_000, 0))
	fetcher := testutil.NewFakeFetcher(clock).
		HandlePage("SignInWelcome", testutil.Page("MyeBaySummary", "", "")).
		HandlePage("SignIn", testutil.Page("PageSignIn", "", "<form></form>"))
	session := newSession(fetcher, clock, nil)

	require.NoError(t, session.Login(ctx, nil, core.DefaultLoginInterval))
	require.Equal(t, clock.Now(), session.LastLogin())
	require.Equal(t, 1, fetcher.Resets())

	requests := fetcher.Requests()
	require.Len(t, requests, 2)
	require.True(t, strings.HasSuffix(requests[0].URL, "?SignIn"))
	require.Contains(t, requests[1].URL, "userid=sniper&pass=p%26ss+word&")
	require.Contains(t, requests[1].LogURL, "pass=*****&")
	require.NotContains(t, requests[1].LogURL, "p%26ss")

	// a recent sign in is reused
	clock.Advance(time.Hour)
	require.NoError(t, session.Login(ctx, nil, core.DefaultLoginInterval))
	require.Len(t, fetcher.Requests(), 2)

	clock.Advance(core.DefaultLoginInterval)
	require.NoError(t, session.Login(ctx, nil, core.DefaultLoginInterval))
	require.Len(t, fetcher.Requests(), 4)

	require.NoError(t, session.ForceLogin(ctx, nil))
	require.Len(t, fetcher.Requests(), 6)
	require.Equal(t, 3, fetcher.Resets())
}

func TestLoginFailures(t *testing.T) {
	testCases := []struct {
		name     string
		page     string
		kind     auction.Kind
		reported bool
	}{
		{
			name: "bad password",
			page: testutil.Page("Welcome to eBay", "", ""),
			kind: auction.KindBadPass,
		},
		{
			name: "bad password error page",
			page: testutil.Page("Welcome to eBay - Sign in - Error", "", ""),
			kind: auction.KindBadPass,
		},
		{
			name: "still on sign in",
			page: testutil.Page("PageSignIn", "", ""),
			kind: auction.KindLogin,
		},
		{
			name: "captcha",
			page: testutil.Page("Security Measure", "Captcha.xsl", ""),
			kind: auction.KindCaptcha,
		},
		{
			name:     "unrecognized",
			page:     testutil.Page("SomethingElse", "", ""),
			kind:     auction.KindLogin,
			reported: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			clock := chrono.NewFakeTime(time.Unix(1_700_000_000, 0))
			fetcher := testutil.NewFakeFetcher(clock).
				HandlePage("SignInWelcome", test.page).
				HandlePage("SignIn", testutil.Page("PageSignIn", "", ""))
			reporter := &recordingReporter{}
			session := newSession(fetcher, clock, reporter)

			a := auction.New("123", "1.00")
			err := session.Login(context.Background(), a, core.DefaultLoginInterval)
			require.True(t, auction.IsKind(err, test.kind), err)
			require.Equal(t, test.kind, a.ErrorKind)
			require.True(t, session.LastLogin().IsZero())

			if test.reported {
				require.Len(t, reporter.reasons, 1)
				require.Contains(t, reporter.reasons[0], "SomethingElse")
			} else {
				require.Empty(t, reporter.reasons)
			}

			// a failed sign in is never reused
			session.Login(context.Background(), a, core.DefaultLoginInterval)
			require.Len(t, fetcher.Requests(), 4)
		})
	}
}

func TestLoginNetworkError(t *testing.T) {
	clock := chrono.NewFakeTime(time.Unix(1_700_000_000, 0))
	fetcher := testutil.NewFakeFetcher(clock).
		Handle("SignIn", testutil.FakeResponse{Err: &auction.Error{Kind: auction.KindNetwork, Detail: "connection refused"}})
	session := newSession(fetcher, clock, nil)

	a := auction.New("123", "1.00")
	err := session.Login(context.Background(), a, 0)
	require.True(t, auction.IsKind(err, auction.KindNetwork))
	require.Equal(t, "connection refused", a.ErrorDetail)
	require.Len(t, fetcher.Requests(), 1)
}
