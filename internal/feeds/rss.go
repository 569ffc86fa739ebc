// Package feeds implements the market-pulse pipeline: RSS ingestion, URL
// dedup against the store, generative selection and bilingual persistence.
package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Feed is one RSS source.
type Feed struct {
	Name string
	URL  string
}

// DefaultFeeds are the international sources the pulse job watches.
var DefaultFeeds = []Feed{
	{"CNBC Top News", "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=100003114"},
	{"CNBC Economy", "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=20910258"},
	{"CNBC Finance", "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=10000664"},
	{"BBC Business", "http://feeds.bbci.co.uk/news/business/rss.xml"},
	{"MarketWatch", "https://feeds.marketwatch.com/marketwatch/topstories/"},
}

// maxEntriesPerFeed caps how deep into each feed the crawler reads.
const maxEntriesPerFeed = 20

// maxSummaryLen truncates feed summaries before they reach the prompt.
const maxSummaryLen = 500

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title string `xml:"title"`
	Items []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Link        string `xml:"link"`
}

// Article is one feed entry normalized for selection.
type Article struct {
	Title     string
	Summary   string
	URL       string
	Source    string
	Published time.Time
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

func stripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}

// pubDateLayouts covers the timestamp formats the watched feeds emit.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

func parsePubDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FetchFeed downloads and decodes one feed, returning entries published
// after the cutoff. Entries without a parseable date are kept and stamped
// with the current time.
func FetchFeed(ctx context.Context, client *http.Client, feed Feed, cutoff time.Time) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s: status %d", feed.Name, resp.StatusCode)
	}

	var doc rss
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("feed %s: %w", feed.Name, err)
	}

	items := doc.Channel.Items
	if len(items) > maxEntriesPerFeed {
		items = items[:maxEntriesPerFeed]
	}

	var articles []Article
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			continue
		}

		published, ok := parsePubDate(it.PubDate)
		if ok && published.Before(cutoff) {
			continue
		}
		if !ok {
			published = time.Now().UTC()
		}

		summary := stripTags(it.Description)
		if runes := []rune(summary); len(runes) > maxSummaryLen {
			summary = string(runes[:maxSummaryLen])
		}

		articles = append(articles, Article{
			Title:     title,
			Summary:   summary,
			URL:       link,
			Source:    feed.Name,
			Published: published,
		})
	}
	return articles, nil
}
