package store

import (
	"context"
	"time"
)

const interbankTable = "vn_sbv_interbankrate"

// InterbankTerm is one tenor's average rate and traded volume from the SBV
// interbank market feed.
type InterbankTerm struct {
	Column string // ls_/doanhso_ column suffix: quadem, 1w, 2w, 1m, 3m, 6m, 9m
	Rate   *float64
	Volume *float64
}

// InterbankRow is the daily SBV interbank observation. Natural key is date.
type InterbankRow struct {
	Date  time.Time
	Terms []InterbankTerm
}

// PersistInterbank writes one daily interbank row with dedup on date.
func (s *Store) PersistInterbank(ctx context.Context, row InterbankRow, force bool) (Outcome, error) {
	date := row.Date.Format("2006-01-02")

	if force {
		if _, err := s.q.Exec(ctx,
			"DELETE FROM "+interbankTable+" WHERE date = $1", date,
		); err != nil {
			return Skipped, &Error{Op: "force delete", Table: interbankTable, Cause: err}
		}
	} else {
		exists, err := s.exists(ctx, interbankTable, "date = $1", date)
		if err != nil {
			return Skipped, err
		}
		if exists {
			return Skipped, nil
		}
	}

	cols := []string{"date", "crawl_time"}
	args := []any{date, time.Now()}
	for _, t := range row.Terms {
		if t.Rate != nil {
			cols = append(cols, "ls_"+t.Column)
			args = append(args, *t.Rate)
		}
		if t.Volume != nil {
			cols = append(cols, "doanhso_"+t.Column)
			args = append(args, *t.Volume)
		}
	}

	if err := s.insertSparse(ctx, interbankTable, cols, args); err != nil {
		return Skipped, err
	}
	return Inserted, nil
}

// UpdatePolicyRates sets the rediscount and refinancing rates on an existing
// interbank row. Returns Skipped when no row exists for the date, since the
// policy rates have no home without the daily observation.
func (s *Store) UpdatePolicyRates(ctx context.Context, date time.Time, rediscount, refinancing *float64) (Outcome, error) {
	d := date.Format("2006-01-02")
	exists, err := s.exists(ctx, interbankTable, "date = $1", d)
	if err != nil {
		return Skipped, err
	}
	if !exists {
		return Skipped, nil
	}

	if _, err := s.q.Exec(ctx,
		"UPDATE "+interbankTable+" SET rediscount_rate = $1, refinancing_rate = $2 WHERE date = $3",
		rediscount, refinancing, d,
	); err != nil {
		return Skipped, &Error{Op: "update policy rates", Table: interbankTable, Cause: err}
	}
	return Inserted, nil
}
