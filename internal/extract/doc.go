// Package extract implements the three-tier extraction chain: per-source
// structured parsers, a source-agnostic heuristic table parser, and a
// generative-model fallback. Tiers return (nil, nil) when they find no
// anchor or no plausible data; that miss is the signal to advance tiers,
// not an error.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses a fetched body into a goquery document.
func ParseHTML(body string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

// VisibleText returns the page text with scripts and styles removed and
// whitespace collapsed line by line.
func VisibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()
	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// cellText returns a cell's text with whitespace normalized.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
