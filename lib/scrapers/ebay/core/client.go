package core

import (
	"bidsniper/lib/auction"
	"bidsniper/lib/htmlutil"
	"bidsniper/lib/restyutil"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Document is a fetched page.
type Document struct {
	Body []byte
	// URL is where the page was finally served from.
	URL string
	// TimeToFirstByte is when the first byte of the response arrived, it
	// is zero when unknown.
	TimeToFirstByte time.Time
}

// Fetcher fetches pages. logURL is the form of url that may be logged,
// empty when url holds nothing sensitive.
//
// Failures are returned as an *auction.Error of kind KindNetwork or
// KindUnavailable.
type Fetcher interface {
	Fetch(ctx context.Context, url, logURL string) (Document, error)
}

// maxRefreshHops bounds how many <meta http-equiv="refresh"> redirects
// one Fetch follows.
const maxRefreshHops = 5

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	Proxy   string
	Timeout time.Duration
	// Output receives a dump of every exchange when debug logging is on.
	Output restyutil.InstrumentOutput
}

// Client is the Fetcher that talks to the real site.
type Client struct {
	Http *resty.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	// sign in bounces between the signin, my and offer hosts
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 60
	}
	client.SetTimeout(timeout)
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}

	restyutil.InstrumentClient(client, tracer, opts.Output)

	return &Client{Http: client}, nil
}

// ResetSession drops every cookie, the next login starts from scratch.
func (c *Client) ResetSession() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	c.Http.SetCookieJar(jar)
	return nil
}

func (c *Client) Fetch(ctx context.Context, target, logURL string) (Document, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	if logURL == "" {
		logURL = target
	}
	span.SetAttributes(attribute.String("url", logURL))

	for hop := 0; ; hop++ {
		doc, err := c.get(ctx, target, logURL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch")
			return Document{}, err
		}
		if hop >= maxRefreshHops {
			return doc, nil
		}

		next, ok := htmlutil.MetaRefresh(ctx, doc.Body)
		if !ok {
			return doc, nil
		}
		resolved, err := resolveRefresh(doc.URL, next)
		if err != nil || resolved == doc.URL {
			return doc, nil
		}
		span.AddEvent("meta refresh", oteltrace.WithAttributes(attribute.String("target", resolved)))
		target, logURL = resolved, resolved
	}
}

func (c *Client) get(ctx context.Context, target, logURL string) (Document, error) {
	res, err := c.Http.R().
		SetContext(restyutil.WithRedactedURL(ctx, logURL)).
		EnableTrace().
		Get(target)
	if err != nil {
		return Document{}, &auction.Error{
			Kind:   auction.KindNetwork,
			Detail: fmt.Sprintf("%s: %s", logURL, err.Error()),
		}
	}
	if res.StatusCode() >= 500 {
		return Document{}, &auction.Error{
			Kind:   auction.KindUnavailable,
			Detail: fmt.Sprintf("%s: %s", logURL, res.Status()),
		}
	}

	doc := Document{
		Body: res.Body(),
		URL:  target,
	}
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		doc.URL = res.RawResponse.Request.URL.String()
	}

	trace := res.Request.TraceInfo()
	if trace.TotalTime > 0 {
		doc.TimeToFirstByte = res.Request.Time.Add(trace.TotalTime - trace.ResponseTime)
	} else {
		doc.TimeToFirstByte = res.ReceivedAt()
	}
	fetchLatency.Record(ctx, doc.TimeToFirstByte.Sub(res.Request.Time).Seconds())

	return doc, nil
}

func resolveRefresh(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
