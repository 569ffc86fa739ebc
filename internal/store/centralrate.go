package store

import (
	"context"
	"time"

	"github.com/vietdataverse/fincrawl/internal/record"
)

const centralRateTable = "vn_sbv_centralrate"

// FXRow is one exchange-rate observation for vn_sbv_centralrate. The natural
// key is (date, type, source, bank): the SBV central rate is stored as
// (USD, Crawl, SBV); commercial-bank API quotes as (currency, API, bank).
type FXRow struct {
	Date       time.Time
	Currency   string // "type" column
	SourceKind string // "Crawl" or "API"
	Bank       string
	DocumentNo string

	Rate        *float64 // usd_vnd_rate
	BuyCash     *float64
	BuyTransfer *float64
	SellRate    *float64
}

// PersistFX writes one exchange-rate row with dedup on the natural key.
func (s *Store) PersistFX(ctx context.Context, row FXRow, force bool) (Outcome, error) {
	date := row.Date.Format("2006-01-02")

	if force {
		if _, err := s.q.Exec(ctx,
			"DELETE FROM "+centralRateTable+" WHERE date = $1 AND type = $2 AND source = $3 AND bank = $4",
			date, row.Currency, row.SourceKind, row.Bank,
		); err != nil {
			return Skipped, &Error{Op: "force delete", Table: centralRateTable, Cause: err}
		}
	} else {
		exists, err := s.exists(ctx, centralRateTable,
			"date = $1 AND type = $2 AND source = $3 AND bank = $4",
			date, row.Currency, row.SourceKind, row.Bank)
		if err != nil {
			return Skipped, err
		}
		if exists {
			return Skipped, nil
		}
	}

	cols := []string{"date", "crawl_time", "type", "source", "bank"}
	args := []any{date, time.Now(), row.Currency, row.SourceKind, row.Bank}
	if row.Rate != nil {
		cols, args = append(cols, "usd_vnd_rate"), append(args, *row.Rate)
	}
	if row.BuyCash != nil {
		cols, args = append(cols, "buy_cash"), append(args, *row.BuyCash)
	}
	if row.BuyTransfer != nil {
		cols, args = append(cols, "buy_transfer"), append(args, *row.BuyTransfer)
	}
	if row.SellRate != nil {
		cols, args = append(cols, "sell_rate"), append(args, *row.SellRate)
	}
	if row.DocumentNo != "" {
		cols, args = append(cols, "document_no"), append(args, row.DocumentNo)
	}

	if err := s.insertSparse(ctx, centralRateTable, cols, args); err != nil {
		return Skipped, err
	}
	return Inserted, nil
}

// FXRowFromCandidate maps a validated central-rate candidate to its row.
func FXRowFromCandidate(c *record.Candidate) FXRow {
	row := FXRow{
		Date:       c.Date,
		Currency:   "USD",
		SourceKind: "Crawl",
		Bank:       c.Source,
		DocumentNo: c.DocumentNo,
	}
	if v, ok := c.Get(record.FieldCentralRate); ok {
		row.Rate = &v
	}
	return row
}
