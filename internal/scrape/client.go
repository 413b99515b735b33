package scrape

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"github.com/guarzo/priceatlas/internal/ratelimit"
)

const (
	mobileUserAgent = "Mozilla/5.0 (Linux; Android 10; SM-G975F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.91 Mobile Safari/537.36"

	// Parsed search results are cached briefly so repeat queries do not
	// re-hit the sources; short enough that price history still accrues.
	searchCacheTTL = 10 * time.Minute
)

var desktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// Client is the fetch side shared by every extractor: browser headers,
// per-source rate limiting and response decompression. Parsing and
// result caching stay with the individual extractors.
type Client struct {
	http   *http.Client
	global *rate.Limiter // overall ceiling across all sources

	mu       sync.Mutex
	limiters map[string]*ratelimit.Limiter
}

// ClientConfig holds construction options for the scrape client.
type ClientConfig struct {
	Timeout     time.Duration // per-request; defaults to 15s
	GlobalRate  rate.Limit    // requests per second across all sources; defaults to 5
	GlobalBurst int
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	globalRate := cfg.GlobalRate
	if globalRate == 0 {
		globalRate = rate.Limit(5)
	}
	burst := cfg.GlobalBurst
	if burst == 0 {
		burst = 5
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		global:   rate.NewLimiter(globalRate, burst),
		limiters: make(map[string]*ratelimit.Limiter),
	}
}

// RandomDesktopUA returns one of the rotated desktop user agents.
func RandomDesktopUA() string {
	return desktopUserAgents[rand.Intn(len(desktopUserAgents))]
}

// FixedDesktopUA returns the stable high-quality desktop user agent
// tried before rotating to a random one.
func FixedDesktopUA() string {
	return desktopUserAgents[0]
}

func (c *Client) limiter(source string) *ratelimit.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[source]
	if !ok {
		l = ratelimit.ForSource(source)
		c.limiters[source] = l
	}
	return l
}

// GetDocument fetches a URL for a source and parses it into a goquery
// document. userAgent may be empty, in which case a rotated desktop UA
// is used; mobile sources pass mobileUserAgent explicitly.
func (c *Client) GetDocument(ctx context.Context, source, rawURL, userAgent string) (*goquery.Document, error) {
	body, err := c.GetBody(ctx, source, rawURL, userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", source, err)
	}
	return doc, nil
}

// GetBody fetches a URL and returns the decoded response body. The
// caller must close it.
func (c *Client) GetBody(ctx context.Context, source, rawURL, userAgent string) (io.ReadCloser, error) {
	if err := c.global.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	c.limiter(source).Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	setBrowserHeaders(req, userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", source, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned HTTP %d", source, resp.StatusCode)
	}

	reader, err := decodedReader(resp)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("decode %s response: %w", source, err)
	}

	return struct {
		io.Reader
		io.Closer
	}{reader, resp.Body}, nil
}

func setBrowserHeaders(req *http.Request, userAgent string) {
	if userAgent == "" {
		userAgent = RandomDesktopUA()
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("DNT", "1")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Cache-Control", "max-age=0")
}

func decodedReader(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}
