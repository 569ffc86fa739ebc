package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vietdataverse/fincrawl/internal/extract"
	"github.com/vietdataverse/fincrawl/internal/fetch"
	"github.com/vietdataverse/fincrawl/internal/pipeline"
	"github.com/vietdataverse/fincrawl/internal/record"
	"github.com/vietdataverse/fincrawl/internal/store"
)

var fxCmd = &cobra.Command{
	Use:   "fx",
	Short: "Crawl exchange rates (Vietcombank API, VNAppMob BID/TCB)",
	RunE:  runFX,
}

var (
	fxForce    bool
	fxBackfill bool
)

func init() {
	fxCmd.Flags().BoolVar(&fxForce, "force", false, "overwrite existing rows")
	fxCmd.Flags().BoolVar(&fxBackfill, "backfill", false, "backfill up to a year of Vietcombank history")
	rootCmd.AddCommand(fxCmd)
}

const (
	vcbRatesURL    = "https://www.vietcombank.com.vn/api/exchangerates"
	vnappmobBase   = "https://api.vnappmob.com"
	vnappmobKeyURL = vnappmobBase + "/api/request_api_key?scope=exchange_rate"

	backfillDays     = 365
	backfillErrorCap = 10
	backfillPacing   = 300 * time.Millisecond
)

func runFX(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	force := fxForce || a.cfg.Force

	tasks := []pipeline.Task{
		&pipeline.FuncTask{Name: "vcb-fx", Fn: func(ctx context.Context) (int, int, error) {
			if fxBackfill {
				return a.backfillVCB(ctx, force)
			}
			return a.crawlVCBDay(ctx, time.Now(), force)
		}},
		&pipeline.FuncTask{Name: "vnappmob-bid", Fn: func(ctx context.Context) (int, int, error) {
			return a.crawlVNAppMob(ctx, "bid", force)
		}},
		&pipeline.FuncTask{Name: "vnappmob-tcb", Fn: func(ctx context.Context) (int, int, error) {
			return a.crawlVNAppMob(ctx, "tcb", force)
		}},
	}
	return a.runJob(ctx, "fx", tasks...)
}

// fetchVCBRates pulls one day's quotes from the Vietcombank API together
// with the date the feed reports for them.
func (a *app) fetchVCBRates(ctx context.Context, day time.Time) ([]extract.FXQuote, time.Time, error) {
	doc, err := a.fetcher.Fetch(ctx, fetch.Source{
		ID:         "vcb-fx",
		URL:        fmt.Sprintf("%s?date=%s", vcbRatesURL, day.Format("2006-01-02")),
		Strategy:   fetch.MethodHTTP,
		NoEscalate: true,
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return extract.ParseVCBExchangeRates(doc.Body, day)
}

func (a *app) persistQuotes(ctx context.Context, quotes []extract.FXQuote, date time.Time, bank string, force bool) (inserted, skipped int, err error) {
	for _, q := range quotes {
		if err := record.Validate(q.Candidate(bank, date)); err != nil {
			a.log.WithError(err).WithField("currency", q.Currency).Warn("quote rejected")
			continue
		}
		row := store.FXRow{
			Date:        date,
			Currency:    q.Currency,
			SourceKind:  "API",
			Bank:        bank,
			BuyCash:     q.BuyCash,
			BuyTransfer: q.BuyTransfer,
			SellRate:    q.Sell,
		}
		if q.Currency == "USD" {
			row.Rate = q.BuyTransfer
		}
		outcome, err := a.store.PersistFX(ctx, row, force)
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

func (a *app) crawlVCBDay(ctx context.Context, day time.Time, force bool) (int, int, error) {
	quotes, date, err := a.fetchVCBRates(ctx, day)
	if err != nil {
		return 0, 0, err
	}
	if len(quotes) == 0 {
		return 0, 0, fmt.Errorf("no quotes from VCB for %s", day.Format("2006-01-02"))
	}
	return a.persistQuotes(ctx, quotes, date, "VCB", force)
}

// backfillVCB walks back up to a year of weekdays, stopping after ten
// consecutive empty days. Requests are paced to stay friendly to the API.
func (a *app) backfillVCB(ctx context.Context, force bool) (inserted, skipped int, err error) {
	now := time.Now()
	emptyStreak := 0

	for daysAgo := 0; daysAgo < backfillDays; daysAgo++ {
		if ctx.Err() != nil {
			return inserted, skipped, ctx.Err()
		}
		day := now.AddDate(0, 0, -daysAgo)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		quotes, date, err := a.fetchVCBRates(ctx, day)
		if err != nil || len(quotes) == 0 {
			emptyStreak++
			if emptyStreak > backfillErrorCap {
				a.log.WithField("days_back", daysAgo).Warn("too many consecutive empty days, stopping backfill")
				break
			}
			continue
		}
		emptyStreak = 0

		ins, skp, err := a.persistQuotes(ctx, quotes, date, "VCB", force)
		inserted += ins
		skipped += skp
		if err != nil {
			return inserted, skipped, err
		}

		if daysAgo > 0 && daysAgo%30 == 0 {
			a.log.WithFields(logrus.Fields{"days_back": daysAgo, "inserted": inserted}).Info("backfill progress")
		}
		time.Sleep(backfillPacing)
	}
	return inserted, skipped, nil
}

// requestVNAppMobKey asks for a fresh bearer key, valid for fifteen days.
func (a *app) requestVNAppMobKey(ctx context.Context) (string, error) {
	doc, err := a.fetcher.Fetch(ctx, fetch.Source{
		ID:         "vnappmob-key",
		URL:        vnappmobKeyURL,
		Strategy:   fetch.MethodHTTP,
		NoEscalate: true,
	})
	if err != nil {
		return "", err
	}
	return extract.ParseVNAppMobKey(doc.Body)
}

// crawlVNAppMob pulls one bank's quotes. An expired key answers 403; the
// key is refreshed once and the call retried before giving up.
func (a *app) crawlVNAppMob(ctx context.Context, bank string, force bool) (int, int, error) {
	key, err := a.requestVNAppMobKey(ctx)
	if err != nil {
		return 0, 0, err
	}

	src := fetch.Source{
		ID:         "vnappmob-" + bank,
		URL:        fmt.Sprintf("%s/api/v2/exchange_rate/%s", vnappmobBase, bank),
		Strategy:   fetch.MethodHTTP,
		NoEscalate: true,
		Headers:    map[string]string{"Authorization": "Bearer " + key},
	}
	doc, err := a.fetcher.Fetch(ctx, src)
	if err != nil {
		var fe *fetch.Error
		if !errors.As(err, &fe) || fe.Kind != fetch.KindBlocked {
			return 0, 0, err
		}
		key, err = a.requestVNAppMobKey(ctx)
		if err != nil {
			return 0, 0, err
		}
		src.Headers["Authorization"] = "Bearer " + key
		doc, err = a.fetcher.Fetch(ctx, src)
		if err != nil {
			return 0, 0, err
		}
	}

	quotes, err := extract.ParseVNAppMobRates(doc.Body)
	if err != nil {
		return 0, 0, err
	}
	if len(quotes) == 0 {
		return 0, 0, fmt.Errorf("no quotes from %s", bank)
	}
	return a.persistQuotes(ctx, quotes, time.Now(), strings.ToUpper(bank), force)
}
