package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietdataverse/fincrawl/internal/extract"
	"github.com/vietdataverse/fincrawl/internal/fetch"
	"github.com/vietdataverse/fincrawl/internal/pipeline"
	"github.com/vietdataverse/fincrawl/internal/record"
	"github.com/vietdataverse/fincrawl/internal/store"
)

var goldsilverCmd = &cobra.Command{
	Use:   "goldsilver",
	Short: "Crawl gold prices (24h.com.vn, BTMC) and silver prices (giabac.vn)",
	RunE:  runGoldSilver,
}

var goldsilverForce bool

func init() {
	goldsilverCmd.Flags().BoolVar(&goldsilverForce, "force", false, "overwrite rows in the current hour")
	rootCmd.AddCommand(goldsilverCmd)
}

const (
	gold24hURL      = "https://www.24h.com.vn/gia-vang-hom-nay-c425.html"
	btmcAPIURL      = "http://api.btmc.vn/api/BTMCAPI/getpricebtmc"
	btmcAPIKey      = "3kd8ub1llcg9t45hnoh8hmn7t5kc2v"
	giabacChartURL  = "https://giabac.vn/SilverInfo/GetGoldPriceChartFromSQLData?days=7&type=L"
	giabacBoardURL  = "https://giabac.vn/"
	giabacBoardWait = "#priceTable table tr td"
)

func runGoldSilver(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	force := goldsilverForce || a.cfg.Force

	tasks := []pipeline.Task{
		&pipeline.FuncTask{Name: "gold-24h", Fn: func(ctx context.Context) (int, int, error) {
			return a.crawlGold24h(ctx, force)
		}},
		&pipeline.FuncTask{Name: "gold-btmc", Fn: func(ctx context.Context) (int, int, error) {
			return a.crawlBTMC(ctx, force)
		}},
		&pipeline.FuncTask{Name: "silver-giabac", Fn: func(ctx context.Context) (int, int, error) {
			return a.crawlSilver(ctx, force)
		}},
	}
	return a.runJob(ctx, "goldsilver", tasks...)
}

func (a *app) persistMetal(ctx context.Context, cands []*record.Candidate, persist func(context.Context, *record.Candidate, bool) (store.Outcome, error), force bool) (inserted, skipped int, err error) {
	for _, c := range cands {
		if err := record.Validate(c); err != nil {
			a.log.WithError(err).WithField("type", c.SubKey).Warn("price row rejected")
			continue
		}
		outcome, err := persist(ctx, c, force)
		if err != nil {
			return inserted, skipped, err
		}
		if outcome == store.Inserted {
			inserted++
		} else {
			skipped++
		}
	}
	return inserted, skipped, nil
}

func (a *app) crawlGold24h(ctx context.Context, force bool) (int, int, error) {
	day := time.Now()
	doc, err := a.fetcher.Fetch(ctx, fetch.Source{
		ID:       "gold-24h",
		URL:      fmt.Sprintf("%s?ngaythang=%s", gold24hURL, day.Format("2006-01-02")),
		Strategy: fetch.MethodHTTP,
	})
	if err != nil {
		return 0, 0, err
	}
	parsed, err := extract.ParseHTML(doc.Body)
	if err != nil {
		return 0, 0, err
	}

	cands := extract.ParseGold24h(parsed, day)
	if len(cands) == 0 {
		return 0, 0, fmt.Errorf("no gold brands found")
	}
	return a.persistMetal(ctx, cands, a.store.PersistGold, force)
}

func (a *app) crawlBTMC(ctx context.Context, force bool) (int, int, error) {
	doc, err := a.fetcher.Fetch(ctx, fetch.Source{
		ID:         "gold-btmc",
		URL:        fmt.Sprintf("%s?key=%s", btmcAPIURL, btmcAPIKey),
		Strategy:   fetch.MethodHTTP,
		NoEscalate: true,
	})
	if err != nil {
		return 0, 0, err
	}

	cands, err := extract.ParseBTMC(doc.Body, time.Now())
	if err != nil {
		return 0, 0, err
	}
	if len(cands) == 0 {
		return 0, 0, fmt.Errorf("no products from BTMC")
	}
	return a.persistMetal(ctx, cands, a.store.PersistGold, force)
}

// crawlSilver tries the giabac chart API first and renders the price board
// only when the cheap path yields nothing.
func (a *app) crawlSilver(ctx context.Context, force bool) (int, int, error) {
	var cand *record.Candidate

	doc, err := a.fetcher.Fetch(ctx, fetch.Source{
		ID:         "silver-giabac",
		URL:        giabacChartURL,
		Strategy:   fetch.MethodHTTP,
		NoEscalate: true,
	})
	if err == nil {
		if c, parseErr := extract.ParseGiabacChart(doc.Body); parseErr == nil && c != nil {
			cand = c
		}
	}

	if cand == nil {
		a.log.Info("chart API empty, rendering price board")
		page, err := a.fetcher.Fetch(ctx, fetch.Source{
			ID:           "silver-giabac",
			URL:          giabacBoardURL,
			Strategy:     fetch.MethodBrowser,
			WaitSelector: giabacBoardWait,
		})
		if err != nil {
			return 0, 0, err
		}
		parsed, err := extract.ParseHTML(page.Body)
		if err != nil {
			return 0, 0, err
		}
		cand = extract.ParseGiabacSilver(parsed, time.Now())
	}
	if cand == nil {
		return 0, 0, fmt.Errorf("no silver price found")
	}
	return a.persistMetal(ctx, []*record.Candidate{cand}, a.store.PersistSilver, force)
}
