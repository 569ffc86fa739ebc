// Package fetch retrieves raw documents for crawl sources, escalating from a
// plain HTTP request to headless-browser rendering when a source blocks bots
// or renders its content with JavaScript.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is a realistic browser user agent; several of the rate
// sites serve placeholder pages to anything that looks like a bot.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultRetries is the retry budget for transient network failures.
const DefaultRetries = 3

// Method records which strategy actually produced a document.
type Method string

// Fetch strategies.
const (
	MethodHTTP    Method = "http"
	MethodBrowser Method = "browser"
)

// Source describes one crawlable upstream. Immutable, supplied at job start.
type Source struct {
	ID       string
	URL      string
	Strategy Method            // preferred strategy; http may still escalate
	Headers  map[string]string // extra request headers
	// WaitSelector, when set, is the CSS selector the browser strategy
	// waits for before reading the rendered page.
	WaitSelector string
	// NoEscalate keeps an HTTP source on HTTP. JSON endpoints set it:
	// a short body there is a real reply, not a placeholder shell.
	NoEscalate bool
}

// Document is the fetched payload handed to the parsers. Read-only after fetch.
type Document struct {
	Body        string
	ContentType string
	Method      Method
	FetchedAt   time.Time
}

// ErrorKind classifies fetch failures.
type ErrorKind string

// Fetch failure kinds.
const (
	KindTimeout ErrorKind = "timeout"
	KindStatus  ErrorKind = "http_status"
	KindNetwork ErrorKind = "network"
	KindBlocked ErrorKind = "blocked"
)

// Error is returned after the retry budget is exhausted.
type Error struct {
	URL     string
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s (%s): %s: %v", e.URL, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s (%s): %s", e.URL, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a Fetcher.
type Options struct {
	Timeout        time.Duration
	BrowserTimeout time.Duration
	UserAgent      string
	Retries        int
	// RetryBase is the backoff base delay; attempt n sleeps base * 2^n.
	RetryBase time.Duration
}

// DefaultOptions returns the defaults used by all crawl jobs.
func DefaultOptions() *Options {
	return &Options{
		Timeout:        DefaultTimeout,
		BrowserTimeout: 45 * time.Second,
		UserAgent:      DefaultUserAgent,
		Retries:        DefaultRetries,
		RetryBase:      time.Second,
	}
}

// Renderer renders a page in a headless browser. Satisfied by BrowserRenderer;
// tests substitute a stub.
type Renderer interface {
	Render(ctx context.Context, url, waitSelector string, timeout time.Duration) (string, error)
}

// Fetcher retrieves documents for sources.
type Fetcher struct {
	opts     *Options
	client   *http.Client
	renderer Renderer
	sleep    func(time.Duration)
}

// New creates a Fetcher. A nil opts uses DefaultOptions; a nil renderer uses
// the chromedp-backed BrowserRenderer.
func New(opts *Options, renderer Renderer) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if renderer == nil {
		renderer = &BrowserRenderer{}
	}
	return &Fetcher{
		opts:     opts,
		client:   &http.Client{Timeout: opts.Timeout},
		renderer: renderer,
		sleep:    time.Sleep,
	}
}

// Fetch retrieves the document for a source. Sources configured for the
// browser strategy go straight to rendering; HTTP sources escalate to the
// browser on a blocking status or an empty body.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (*Document, error) {
	if src.Strategy == MethodBrowser {
		return f.fetchBrowser(ctx, src)
	}

	doc, err := f.fetchHTTP(ctx, src)
	if err == nil && (src.NoEscalate || !looksEmpty(doc.Body)) {
		return doc, nil
	}
	if err != nil && src.NoEscalate {
		return nil, err
	}

	// A blocked response or placeholder body is the escalation trigger,
	// not a retry case.
	if err != nil {
		fe, ok := err.(*Error)
		if !ok || fe.Kind != KindBlocked {
			return nil, err
		}
	}
	return f.fetchBrowser(ctx, src)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, src Source) (*Document, error) {
	if _, err := parseURL(src.URL); err != nil {
		return nil, &Error{URL: src.URL, Kind: KindNetwork, Message: "invalid URL", Cause: err}
	}

	var lastErr error
	for attempt := 0; attempt < f.opts.Retries; attempt++ {
		if attempt > 0 {
			f.sleep(f.opts.RetryBase * (1 << uint(attempt)))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
		if err != nil {
			return nil, &Error{URL: src.URL, Kind: KindNetwork, Message: "failed to create request", Cause: err}
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		for k, v := range src.Headers {
			req.Header.Set(k, v)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			kind := KindNetwork
			if isTimeout(err) {
				kind = KindTimeout
			}
			lastErr = &Error{URL: src.URL, Kind: kind, Message: "HTTP request failed", Cause: err}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = &Error{URL: src.URL, Kind: KindNetwork, Message: "failed to read response body", Cause: err}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return &Document{
				Body:        string(body),
				ContentType: resp.Header.Get("Content-Type"),
				Method:      MethodHTTP,
				FetchedAt:   time.Now(),
			}, nil
		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
			// Bot blocking: retrying the same request is pointless.
			return nil, &Error{URL: src.URL, Kind: KindBlocked,
				Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			// Definitive client error.
			return nil, &Error{URL: src.URL, Kind: KindStatus,
				Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
		default:
			lastErr = &Error{URL: src.URL, Kind: KindStatus,
				Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetchBrowser(ctx context.Context, src Source) (*Document, error) {
	html, err := f.renderer.Render(ctx, src.URL, src.WaitSelector, f.opts.BrowserTimeout)
	if err != nil {
		kind := KindNetwork
		if isTimeout(err) {
			kind = KindTimeout
		}
		return nil, &Error{URL: src.URL, Kind: kind, Message: "browser rendering failed", Cause: err}
	}
	return &Document{
		Body:      html,
		Method:    MethodBrowser,
		FetchedAt: time.Now(),
	}, nil
}

// looksEmpty reports whether a body is too short to contain any rate table,
// the usual sign of a JavaScript-rendered shell page.
func looksEmpty(body string) bool {
	return len(strings.TrimSpace(body)) < 500
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("URL must have scheme and host: %s", raw)
	}
	return u, nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return err != nil && strings.Contains(err.Error(), "context deadline exceeded")
}
