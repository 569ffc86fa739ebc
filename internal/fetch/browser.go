// Package fetch - browser.go provides headless-browser rendering for sources
// that block plain HTTP clients or render rates with JavaScript.
package fetch

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserRenderer renders pages with a headless Chrome instance. The browser
// process is acquired per call and released on every exit path; nothing leaks
// across sources. Requires Chrome/Chromium on the host.
type BrowserRenderer struct{}

// Render loads the page, optionally waits for waitSelector to become visible
// (bounded by the overall timeout), and returns the rendered HTML.
func (BrowserRenderer) Render(ctx context.Context, url, waitSelector string, timeout time.Duration) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	} else {
		// No anchor to wait for; give scripts a moment to populate tables.
		actions = append(actions, chromedp.Sleep(3*time.Second))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", err
	}
	return html, nil
}
