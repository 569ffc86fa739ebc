package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	html  string
	err   error
	calls int
	url   string
}

func (r *stubRenderer) Render(_ context.Context, url, _ string, _ time.Duration) (string, error) {
	r.calls++
	r.url = url
	return r.html, r.err
}

func newTestFetcher(renderer Renderer) (*Fetcher, *[]time.Duration) {
	opts := DefaultOptions()
	opts.RetryBase = time.Millisecond
	f := New(opts, renderer)
	var slept []time.Duration
	f.sleep = func(d time.Duration) { slept = append(slept, d) }
	return f, &slept
}

func bigPage(marker string) string {
	return "<html><body>" + marker + strings.Repeat("<p>nội dung</p>", 100) + "</body></html>"
}

func TestFetchHTTPSuccess(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(bigPage("ok")))
	}))
	defer srv.Close()

	renderer := &stubRenderer{}
	f, _ := newTestFetcher(renderer)

	doc, err := f.Fetch(context.Background(), Source{
		ID:      "test",
		URL:     srv.URL,
		Headers: map[string]string{"Accept-Language": "vi-VN"},
	})
	require.NoError(t, err)
	assert.Equal(t, MethodHTTP, doc.Method)
	assert.Contains(t, doc.Body, "ok")
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "vi-VN", gotAccept)
	assert.Zero(t, renderer.calls)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(bigPage("recovered")))
	}))
	defer srv.Close()

	f, slept := newTestFetcher(&stubRenderer{})
	doc, err := f.Fetch(context.Background(), Source{ID: "test", URL: srv.URL})
	require.NoError(t, err)
	assert.Contains(t, doc.Body, "recovered")
	assert.Equal(t, 3, hits)
	require.Len(t, *slept, 2)
	assert.Greater(t, (*slept)[1], (*slept)[0], "backoff grows per attempt")
}

func TestFetchExhaustsRetryBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(&stubRenderer{})
	_, err := f.Fetch(context.Background(), Source{ID: "test", URL: srv.URL})
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindStatus, fe.Kind)
}

func TestFetchEscalatesOnBlockedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	renderer := &stubRenderer{html: bigPage("rendered")}
	f, slept := newTestFetcher(renderer)

	doc, err := f.Fetch(context.Background(), Source{ID: "test", URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, MethodBrowser, doc.Method)
	assert.Contains(t, doc.Body, "rendered")
	assert.Equal(t, 1, renderer.calls)
	assert.Empty(t, *slept, "blocked responses are not retried")
}

func TestFetchEscalatesOnShellPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><div id=\"app\"></div></body></html>"))
	}))
	defer srv.Close()

	renderer := &stubRenderer{html: bigPage("hydrated")}
	f, _ := newTestFetcher(renderer)

	doc, err := f.Fetch(context.Background(), Source{ID: "test", URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, MethodBrowser, doc.Method)
	assert.Equal(t, srv.URL, renderer.url)
}

func TestFetchNoEscalateKeepsShortBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_key": "abc"}`))
	}))
	defer srv.Close()

	renderer := &stubRenderer{}
	f, _ := newTestFetcher(renderer)

	doc, err := f.Fetch(context.Background(), Source{ID: "api", URL: srv.URL, NoEscalate: true})
	require.NoError(t, err)
	assert.Equal(t, MethodHTTP, doc.Method)
	assert.Zero(t, renderer.calls)
}

func TestFetchNoEscalateReturnsBlockedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	renderer := &stubRenderer{html: bigPage("rendered")}
	f, _ := newTestFetcher(renderer)

	_, err := f.Fetch(context.Background(), Source{ID: "api", URL: srv.URL, NoEscalate: true})
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindBlocked, fe.Kind)
	assert.Zero(t, renderer.calls)
}

func TestFetchClientErrorDoesNotEscalate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	renderer := &stubRenderer{html: bigPage("rendered")}
	f, _ := newTestFetcher(renderer)

	_, err := f.Fetch(context.Background(), Source{ID: "test", URL: srv.URL})
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindStatus, fe.Kind)
	assert.Zero(t, renderer.calls)
}

func TestFetchBrowserStrategy(t *testing.T) {
	renderer := &stubRenderer{html: bigPage("board")}
	f, _ := newTestFetcher(renderer)

	doc, err := f.Fetch(context.Background(), Source{
		ID:       "test",
		URL:      "https://example.com/board",
		Strategy: MethodBrowser,
	})
	require.NoError(t, err)
	assert.Equal(t, MethodBrowser, doc.Method)
	assert.Equal(t, 1, renderer.calls)
}

func TestFetchBrowserFailure(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("chrome crashed")}
	f, _ := newTestFetcher(renderer)

	_, err := f.Fetch(context.Background(), Source{
		ID:       "test",
		URL:      "https://example.com/board",
		Strategy: MethodBrowser,
	})
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindNetwork, fe.Kind)
}

func TestFetchInvalidURL(t *testing.T) {
	f, _ := newTestFetcher(&stubRenderer{})
	_, err := f.Fetch(context.Background(), Source{ID: "test", URL: "not a url"})
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindNetwork, fe.Kind)
}
