package store

import (
	"context"
	"time"

	"github.com/vietdataverse/fincrawl/internal/record"
)

const goldTable = "vn_gold_24h_hist"

// hourWindow returns the start and end of the hour containing t. Gold and
// silver snapshots dedup per hour so the morning and afternoon runs both land.
func hourWindow(t time.Time) (time.Time, time.Time) {
	start := t.Truncate(time.Hour)
	return start, start.Add(time.Hour)
}

// PersistGold writes one gold-brand price row. Dedup key is
// (date, type, hour of crawl_time); force mode deletes the hour's row first.
func (s *Store) PersistGold(ctx context.Context, c *record.Candidate, force bool) (Outcome, error) {
	date := c.Date.Format("2006-01-02")
	now := time.Now()
	start, end := hourWindow(now)

	if force {
		if _, err := s.q.Exec(ctx,
			"DELETE FROM "+goldTable+" WHERE date = $1 AND type = $2 AND crawl_time >= $3 AND crawl_time < $4",
			date, c.SubKey, start, end,
		); err != nil {
			return Skipped, &Error{Op: "force delete", Table: goldTable, Cause: err}
		}
	} else {
		exists, err := s.exists(ctx, goldTable,
			"date = $1 AND type = $2 AND crawl_time >= $3 AND crawl_time < $4",
			date, c.SubKey, start, end)
		if err != nil {
			return Skipped, err
		}
		if exists {
			return Skipped, nil
		}
	}

	cols := []string{"date", "type", "crawl_time"}
	args := []any{date, c.SubKey, now}
	for _, f := range c.PopulatedFields() {
		v, _ := c.Get(f)
		cols = append(cols, string(f))
		args = append(args, v)
	}

	if err := s.insertSparse(ctx, goldTable, cols, args); err != nil {
		return Skipped, err
	}
	return Inserted, nil
}
