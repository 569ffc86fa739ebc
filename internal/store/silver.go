package store

import (
	"context"
	"time"

	"github.com/vietdataverse/fincrawl/internal/record"
)

const silverTable = "vn_silver_phuquy_hist"

// PersistSilver writes one silver price snapshot, deduped per (date, hour).
func (s *Store) PersistSilver(ctx context.Context, c *record.Candidate, force bool) (Outcome, error) {
	date := c.Date.Format("2006-01-02")
	now := time.Now()
	start, end := hourWindow(now)

	if force {
		if _, err := s.q.Exec(ctx,
			"DELETE FROM "+silverTable+" WHERE date = $1 AND crawl_time >= $2 AND crawl_time < $3",
			date, start, end,
		); err != nil {
			return Skipped, &Error{Op: "force delete", Table: silverTable, Cause: err}
		}
	} else {
		exists, err := s.exists(ctx, silverTable,
			"date = $1 AND crawl_time >= $2 AND crawl_time < $3",
			date, start, end)
		if err != nil {
			return Skipped, err
		}
		if exists {
			return Skipped, nil
		}
	}

	cols := []string{"date", "crawl_time", "source"}
	args := []any{date, now, c.Source}
	for _, f := range c.PopulatedFields() {
		v, _ := c.Get(f)
		cols = append(cols, string(f))
		args = append(args, v)
	}

	if err := s.insertSparse(ctx, silverTable, cols, args); err != nil {
		return Skipped, err
	}
	return Inserted, nil
}
