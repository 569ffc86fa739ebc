package feeds

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vietdataverse/fincrawl/internal/store"
)

// freshnessWindow is how far back feed entries are accepted.
const freshnessWindow = 24 * time.Hour

// dedupWindow is how far back previously stored URLs block re-selection.
const dedupWindow = 48 * time.Hour

// NewsStore is the persistence surface the pulse pipeline needs.
type NewsStore interface {
	RecentURLs(ctx context.Context, window time.Duration) (map[string]bool, error)
	InsertNews(ctx context.Context, row store.NewsRow) error
}

// Pipeline runs the whole pulse flow end to end.
type Pipeline struct {
	Client   *http.Client
	Feeds    []Feed
	Selector *Selector
	Store    NewsStore
	Log      *logrus.Entry

	// Now is replaceable in tests.
	Now func() time.Time
}

// Result summarizes one pulse run.
type Result struct {
	Fetched  int
	Fresh    int
	Selected int
	Saved    int
}

// Run crawls every feed, filters and dedups, selects with one generative
// call and stores each pick in both languages. A run with nothing new is a
// success, not a failure.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	log := p.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	res := &Result{}
	cutoff := now().UTC().Add(-freshnessWindow)

	var articles []Article
	reachable := 0
	for _, feed := range p.Feeds {
		got, err := FetchFeed(ctx, client, feed, cutoff)
		if err != nil {
			log.WithError(err).WithField("feed", feed.Name).Warn("feed unreachable")
			continue
		}
		reachable++
		articles = append(articles, got...)
		log.WithFields(logrus.Fields{"feed": feed.Name, "articles": len(got)}).Info("feed crawled")
	}
	res.Fetched = len(articles)
	if reachable == 0 {
		return res, fmt.Errorf("no feed was reachable")
	}
	if len(articles) == 0 {
		log.Info("no fresh articles in window")
		return res, nil
	}

	seen, err := p.Store.RecentURLs(ctx, dedupWindow)
	if err != nil {
		return res, err
	}
	fresh := make([]Article, 0, len(articles))
	for _, a := range articles {
		if !seen[a.URL] {
			fresh = append(fresh, a)
		}
	}
	res.Fresh = len(fresh)
	log.WithFields(logrus.Fields{"existing": len(seen), "new": len(fresh)}).Info("dedup done")
	if len(fresh) == 0 {
		log.Info("all articles already processed")
		return res, nil
	}

	items, err := p.Selector.Select(ctx, fresh)
	if err != nil {
		return res, err
	}
	res.Selected = len(items)
	if len(items) == 0 {
		log.Info("no relevant items after selection")
		return res, nil
	}

	generatedAt := now()
	if loc, err := time.LoadLocation("Asia/Ho_Chi_Minh"); err == nil {
		generatedAt = generatedAt.In(loc)
	}
	for _, item := range items {
		mri := int(math.Round(item.ImpactScore * 100))
		variants := []struct {
			title, brief, lang string
		}{
			{item.TitleVI, item.SummaryVI, "vi"},
			{item.TitleEN, item.SummaryEN, "en"},
		}
		for _, v := range variants {
			err := p.Store.InsertNews(ctx, store.NewsRow{
				Title:       v.title,
				Brief:       v.brief,
				SourceName:  item.Source,
				SourceDate:  item.SourceDate,
				URL:         item.URL,
				Label:       item.Market,
				Impact:      mri,
				GeneratedAt: generatedAt,
				Lang:        v.lang,
			})
			if err != nil {
				return res, err
			}
			res.Saved++
		}
	}

	log.WithField("saved", res.Saved).Info("pulse completed")
	return res, nil
}
