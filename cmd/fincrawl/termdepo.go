package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietdataverse/fincrawl/internal/fetch"
	"github.com/vietdataverse/fincrawl/internal/pipeline"
	"github.com/vietdataverse/fincrawl/internal/record"
	"github.com/vietdataverse/fincrawl/internal/store"
)

var termdepoCmd = &cobra.Command{
	Use:   "termdepo",
	Short: "Crawl bank term-deposit rates (ACB, VietinBank, Vietcombank)",
	RunE:  runTermdepo,
}

var termdepoForce bool

func init() {
	termdepoCmd.Flags().BoolVar(&termdepoForce, "force", false, "overwrite existing rows for today")
	rootCmd.AddCommand(termdepoCmd)
}

// termDepoSources are the bank rate pages. Vietcombank renders client side
// and goes straight to the browser; the others escalate only when blocked.
var termDepoSources = []fetch.Source{
	{
		ID:       "ACB",
		URL:      "https://acb.com.vn/lai-suat-tien-gui",
		Strategy: fetch.MethodHTTP,
	},
	{
		ID:       "CTG",
		URL:      "https://www.vietinbank.vn/ca-nhan/cong-cu-tien-ich/lai-suat-khcn",
		Strategy: fetch.MethodHTTP,
	},
	{
		ID:           "VCB",
		URL:          "https://www.vietcombank.com.vn/vi-VN/KHCN/Cong-cu-Tien-ich/KHCN---Lai-suat",
		Strategy:     fetch.MethodBrowser,
		WaitSelector: "table",
	},
}

func runTermdepo(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	force := termdepoForce || a.cfg.Force
	date := time.Now()
	chain := a.chain()

	tasks := make([]pipeline.Task, 0, len(termDepoSources))
	for _, src := range termDepoSources {
		tasks = append(tasks, &pipeline.TieredTask{
			Source:  src,
			Kind:    record.DepositRate,
			Date:    date,
			Fetcher: a.fetcher,
			Chain:   chain,
			Log:     a.log,
			Persist: func(ctx context.Context, c *record.Candidate) (store.Outcome, error) {
				return a.store.PersistTermDeposit(ctx, c, force)
			},
		})
	}
	return a.runJob(ctx, "termdepo", tasks...)
}
