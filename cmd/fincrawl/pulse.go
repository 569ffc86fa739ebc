package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vietdataverse/fincrawl/internal/config"
	"github.com/vietdataverse/fincrawl/internal/feeds"
	"github.com/vietdataverse/fincrawl/internal/llm"
	"github.com/vietdataverse/fincrawl/internal/observability"
	"github.com/vietdataverse/fincrawl/internal/store"
)

var pulseCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Build the daily market-pulse digest from international RSS feeds",
	RunE:  runPulse,
}

func init() {
	rootCmd.AddCommand(pulseCmd)
}

// runPulse wires its own dependencies: the pulse job writes to the analysis
// database, not the crawl one, and always needs the generative client.
func runPulse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.ArgusFintelDB == "" {
		return fmt.Errorf("ARGUS_FINTEL_DB is required for pulse")
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for pulse")
	}
	log := observability.Component("pulse")

	st, err := store.Connect(ctx, cfg.ArgusFintelDB)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		return err
	}
	defer client.Close()

	p := &feeds.Pipeline{
		Client:   &http.Client{Timeout: cfg.HTTPTimeout},
		Feeds:    feeds.DefaultFeeds,
		Selector: feeds.NewSelector(client, log),
		Store:    st,
		Log:      log,
	}

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"fetched":  res.Fetched,
		"fresh":    res.Fresh,
		"selected": res.Selected,
		"saved":    res.Saved,
		"at":       time.Now().Format("2006-01-02 15:04"),
	}).Info("pulse done")
	return nil
}
