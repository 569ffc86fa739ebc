package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vietdataverse/fincrawl/internal/config"
	"github.com/vietdataverse/fincrawl/internal/extract"
	"github.com/vietdataverse/fincrawl/internal/fetch"
	"github.com/vietdataverse/fincrawl/internal/llm"
	"github.com/vietdataverse/fincrawl/internal/observability"
	"github.com/vietdataverse/fincrawl/internal/pipeline"
	"github.com/vietdataverse/fincrawl/internal/store"
)

// app bundles the shared dependencies a crawl job needs.
type app struct {
	cfg     *config.Config
	log     *logrus.Entry
	store   *store.Store
	fetcher *fetch.Fetcher
	llm     llm.Client
}

// newApp loads configuration and connects to the crawl database. The
// generative client is optional: without an API key the deterministic tiers
// still run.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := observability.Component("fincrawl")

	st, err := store.Connect(ctx, cfg.CrawlingBotDB)
	if err != nil {
		return nil, err
	}

	opts := fetch.DefaultOptions()
	opts.Timeout = cfg.HTTPTimeout
	opts.BrowserTimeout = cfg.BrowserTimeout

	a := &app{
		cfg:     cfg,
		log:     log,
		store:   st,
		fetcher: fetch.New(opts, nil),
	}

	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
		if err != nil {
			log.WithError(err).Warn("generative client unavailable, tier 3 disabled")
		} else {
			a.llm = client
		}
	} else {
		log.Info("GEMINI_API_KEY not set, tier 3 disabled")
	}
	return a, nil
}

func (a *app) close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	a.store.Close()
}

// chain builds the standard three-tier extraction chain.
func (a *app) chain() *extract.Chain {
	return extract.NewChain(a.log,
		extract.NewStructuredTier(),
		extract.NewHeuristicTier(),
		extract.NewGenerativeTier(a.llm),
	)
}

// runJob executes the tasks sequentially and prints the summary. The error
// is non-nil only when every source failed.
func (a *app) runJob(ctx context.Context, name string, tasks ...pipeline.Task) error {
	runner := pipeline.NewRunner(a.log)
	summary := runner.Run(ctx, name, tasks...)
	fmt.Print(observability.FormatSummary(summary))

	if summary.AllFailed() {
		return fmt.Errorf("job %s: all %d sources failed", name, len(summary.Results))
	}
	return nil
}
