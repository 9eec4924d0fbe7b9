package testutil

import (
	"bidsniper/internal/chrono"
	"bidsniper/lib/auction"
	"bidsniper/lib/scrapers/ebay/core"
	"context"
	"strings"
	"sync"
	"time"
)

// FakeResponse is one canned answer of a FakeFetcher.
type FakeResponse struct {
	Body string
	Err  error
	// Latency is how far the clock moves before the first byte arrives,
	// it only applies when the fetcher has a clock.
	Latency time.Duration
}

// FakeRequest is a request a FakeFetcher received.
type FakeRequest struct {
	URL    string
	LogURL string
}

type route struct {
	match     string
	responses []FakeResponse
	served    int
}

// FakeFetcher is a core.Fetcher that serves canned pages. A url is routed
// to the longest registered pattern it contains, the latest registration
// winning ties. Each route answers with its responses in order and repeats
// the last one once exhausted.
type FakeFetcher struct {
	Clock *chrono.FakeTime

	mutex    sync.Mutex
	routes   []*route
	requests []FakeRequest
	resets   int
}

func NewFakeFetcher(clock *chrono.FakeTime) *FakeFetcher {
	return &FakeFetcher{Clock: clock}
}

// Handle registers responses for urls containing match.
func (f *FakeFetcher) Handle(match string, responses ...FakeResponse) *FakeFetcher {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.routes = append(f.routes, &route{match: match, responses: responses})
	return f
}

// HandlePage registers pages for urls containing match.
func (f *FakeFetcher) HandlePage(match string, pages ...string) *FakeFetcher {
	responses := make([]FakeResponse, len(pages))
	for i, page := range pages {
		responses[i] = FakeResponse{Body: page}
	}
	return f.Handle(match, responses...)
}

func (f *FakeFetcher) Fetch(ctx context.Context, url, logURL string) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.requests = append(f.requests, FakeRequest{URL: url, LogURL: logURL})

	var best *route
	for _, r := range f.routes {
		if strings.Contains(url, r.match) && (best == nil || len(r.match) >= len(best.match)) {
			best = r
		}
	}
	if best == nil || len(best.responses) == 0 {
		return core.Document{}, &auction.Error{
			Kind:   auction.KindNetwork,
			Detail: "no fake page for " + url,
		}
	}

	res := best.responses[min(best.served, len(best.responses)-1)]
	best.served++
	if res.Err != nil {
		return core.Document{}, res.Err
	}

	doc := core.Document{Body: []byte(res.Body), URL: url}
	if f.Clock != nil {
		f.Clock.Advance(res.Latency)
		doc.TimeToFirstByte = f.Clock.Now()
	}
	return doc, nil
}

func (f *FakeFetcher) ResetSession() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.resets++
	return nil
}

// Requests returns every request received so far.
func (f *FakeFetcher) Requests() []FakeRequest {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	out := make([]FakeRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// Count returns how many requests contained match.
func (f *FakeFetcher) Count(match string) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	n := 0
	for _, req := range f.requests {
		if strings.Contains(req.URL, match) {
			n++
		}
	}
	return n
}

func (f *FakeFetcher) Resets() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.resets
}

// Page builds a minimal page carrying the given page name and source id
// markers, either may be empty.
func Page(pageName, srcID, body string) string {
	var b strings.Builder
	b.WriteString("<html><head>")
	if pageName != "" {
		b.WriteString(`<!-- var pageName = "` + pageName + `"; -->`)
	}
	if srcID != "" {
		b.WriteString("<!-- srcId: " + srcID + " -->")
	}
	b.WriteString("</head><body>")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}
