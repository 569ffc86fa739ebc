package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rssDoc(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Feed</title>` + strings.Join(items, "") + `</channel></rss>`
}

func rssItem(title, link, pubDate, description string) string {
	return fmt.Sprintf("<item><title>%s</title><link>%s</link><pubDate>%s</pubDate><description>%s</description></item>",
		title, link, pubDate, description)
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFeedFiltersByCutoff(t *testing.T) {
	now := time.Now().UTC()
	fresh := now.Add(-2 * time.Hour).Format(time.RFC1123Z)
	stale := now.Add(-30 * time.Hour).Format(time.RFC1123Z)

	srv := serveFeed(t, rssDoc(
		rssItem("Fed holds rates", "https://example.com/fed", fresh, "The Fed kept rates steady."),
		rssItem("Old story", "https://example.com/old", stale, "Yesterday's news."),
	))

	articles, err := FetchFeed(context.Background(), srv.Client(), Feed{Name: "Test", URL: srv.URL}, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Fed holds rates", articles[0].Title)
	assert.Equal(t, "Test", articles[0].Source)
}

func TestFetchFeedKeepsUnparseableDates(t *testing.T) {
	srv := serveFeed(t, rssDoc(
		rssItem("No date story", "https://example.com/nodate", "sometime recently", "Body."),
	))

	articles, err := FetchFeed(context.Background(), srv.Client(), Feed{Name: "Test", URL: srv.URL}, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.WithinDuration(t, time.Now().UTC(), articles[0].Published, time.Minute)
}

func TestFetchFeedStripsTagsAndTruncates(t *testing.T) {
	long := strings.Repeat("ab", 400)
	srv := serveFeed(t, rssDoc(
		rssItem("Markup story", "https://example.com/markup",
			time.Now().UTC().Format(time.RFC1123Z),
			"<p>Gold <b>rallies</b> again.</p> "+long),
	))

	articles, err := FetchFeed(context.Background(), srv.Client(), Feed{Name: "Test", URL: srv.URL}, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.True(t, strings.HasPrefix(articles[0].Summary, "Gold rallies again."))
	assert.LessOrEqual(t, len([]rune(articles[0].Summary)), maxSummaryLen)
}

func TestFetchFeedCapsEntries(t *testing.T) {
	var items []string
	date := time.Now().UTC().Format(time.RFC1123Z)
	for i := 0; i < 30; i++ {
		items = append(items, rssItem(
			fmt.Sprintf("Story %d", i),
			fmt.Sprintf("https://example.com/%d", i),
			date, "Body."))
	}
	srv := serveFeed(t, rssDoc(items...))

	articles, err := FetchFeed(context.Background(), srv.Client(), Feed{Name: "Test", URL: srv.URL}, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, articles, maxEntriesPerFeed)
}

func TestFetchFeedSkipsBareItems(t *testing.T) {
	date := time.Now().UTC().Format(time.RFC1123Z)
	srv := serveFeed(t, rssDoc(
		rssItem("", "https://example.com/untitled", date, "Body."),
		rssItem("Unlinked", "", date, "Body."),
		rssItem("Kept", "https://example.com/kept", date, "Body."),
	))

	articles, err := FetchFeed(context.Background(), srv.Client(), Feed{Name: "Test", URL: srv.URL}, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Kept", articles[0].Title)
}

func TestFetchFeedStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := FetchFeed(context.Background(), srv.Client(), Feed{Name: "Down", URL: srv.URL}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
