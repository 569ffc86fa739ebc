package store

import (
	"context"
	"time"

	"github.com/vietdataverse/fincrawl/internal/record"
)

const termDepoTable = "vn_bank_termdepo"

// PersistTermDeposit writes one bank's term-deposit record. Natural key is
// (bank_code, date). In force mode the prior row for the key is deleted first.
func (s *Store) PersistTermDeposit(ctx context.Context, c *record.Candidate, force bool) (Outcome, error) {
	date := c.Date.Format("2006-01-02")

	if force {
		if _, err := s.q.Exec(ctx,
			"DELETE FROM "+termDepoTable+" WHERE bank_code = $1 AND date = $2",
			c.Source, date,
		); err != nil {
			return Skipped, &Error{Op: "force delete", Table: termDepoTable, Cause: err}
		}
	} else {
		exists, err := s.exists(ctx, termDepoTable, "bank_code = $1 AND date = $2", c.Source, date)
		if err != nil {
			return Skipped, err
		}
		if exists {
			return Skipped, nil
		}
	}

	cols := []string{"bank_code", "date", "crawl_time"}
	args := []any{c.Source, date, time.Now()}
	for _, f := range c.PopulatedFields() {
		v, _ := c.Get(f)
		cols = append(cols, string(f))
		args = append(args, v)
	}

	if err := s.insertSparse(ctx, termDepoTable, cols, args); err != nil {
		return Skipped, err
	}
	return Inserted, nil
}
