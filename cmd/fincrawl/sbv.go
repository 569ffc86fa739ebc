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

var sbvCmd = &cobra.Command{
	Use:   "sbv",
	Short: "Crawl SBV central exchange rate, interbank rates and policy rates",
	RunE:  runSBV,
}

var sbvForce bool

func init() {
	sbvCmd.Flags().BoolVar(&sbvForce, "force", false, "overwrite existing rows")
	rootCmd.AddCommand(sbvCmd)
}

const (
	sbvFXPageURL     = "https://sbv.gov.vn/vi/tỷ-giá"
	sbvInterbankURL  = "https://sbv.gov.vn/o/headless-delivery/v1.0/content-structures/3450260/structured-contents?pageSize=1&sort=datePublished:desc"
	sbvPolicyRateURL = "https://sbv.gov.vn/en/l%C3%A3i-su%E1%BA%A5t1"
)

func runSBV(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	force := sbvForce || a.cfg.Force

	central := &pipeline.TieredTask{
		Source: fetch.Source{
			ID:       "SBV",
			URL:      sbvFXPageURL,
			Strategy: fetch.MethodHTTP,
			Headers: map[string]string{
				"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
				"Accept-Language": "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7",
			},
		},
		Kind:    record.CentralRate,
		Date:    time.Now(),
		Fetcher: a.fetcher,
		Chain:   a.chain(),
		Log:     a.log,
		Persist: func(ctx context.Context, c *record.Candidate) (store.Outcome, error) {
			return a.store.PersistFX(ctx, store.FXRowFromCandidate(c), force)
		},
	}

	// The interbank date carries over to the policy-rate update, so both
	// run inside one task in feed order.
	interbank := &pipeline.FuncTask{
		Name: "sbv-interbank",
		Fn: func(ctx context.Context) (int, int, error) {
			return a.crawlInterbank(ctx, force)
		},
	}

	return a.runJob(ctx, "sbv", central, interbank)
}

// crawlInterbank reads the SBV interbank feed, persists the daily row, then
// scrapes the policy-rate page and updates the same row with the rediscount
// and refinancing rates.
func (a *app) crawlInterbank(ctx context.Context, force bool) (inserted, skipped int, err error) {
	doc, err := a.fetcher.Fetch(ctx, fetch.Source{
		ID:         "sbv-interbank",
		URL:        sbvInterbankURL,
		Strategy:   fetch.MethodHTTP,
		NoEscalate: true,
	})
	if err != nil {
		return 0, 0, err
	}

	obs, err := extract.ParseSBVInterbank(doc.Body)
	if err != nil {
		return 0, 0, err
	}
	if obs == nil {
		return 0, 0, fmt.Errorf("interbank feed returned no observation")
	}

	outcome, err := a.store.PersistInterbank(ctx, store.InterbankRow{
		Date:  obs.Date,
		Terms: interbankTerms(obs),
	}, force)
	if err != nil {
		return 0, 0, err
	}
	if outcome == store.Inserted {
		inserted++
	} else {
		skipped++
	}

	// Policy rates are best effort; the interbank row stands without them.
	page, err := a.fetcher.Fetch(ctx, fetch.Source{
		ID:       "sbv-policy",
		URL:      sbvPolicyRateURL,
		Strategy: fetch.MethodHTTP,
	})
	if err != nil {
		a.log.WithError(err).Warn("policy rate page unreachable")
		return inserted, skipped, nil
	}
	parsed, err := extract.ParseHTML(page.Body)
	if err != nil {
		a.log.WithError(err).Warn("policy rate page unparseable")
		return inserted, skipped, nil
	}

	rates := extract.ParseSBVPolicyRates(parsed)
	if rates.Rediscount == nil && rates.Refinancing == nil {
		a.log.Warn("no policy rates found")
		return inserted, skipped, nil
	}
	if _, err := a.store.UpdatePolicyRates(ctx, obs.Date, rates.Rediscount, rates.Refinancing); err != nil {
		a.log.WithError(err).Warn("policy rate update failed")
	}
	return inserted, skipped, nil
}

func interbankTerms(obs *extract.InterbankObservation) []store.InterbankTerm {
	terms := make([]store.InterbankTerm, 0, len(obs.Terms))
	for _, t := range obs.Terms {
		terms = append(terms, store.InterbankTerm{
			Column: t.Column,
			Rate:   t.Rate,
			Volume: t.Volume,
		})
	}
	return terms
}
