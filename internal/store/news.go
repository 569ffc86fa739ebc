package store

import (
	"context"
	"fmt"
	"time"
)

const newsTable = "mri_analysis"

// NewsRow is one persisted market-pulse item in one language.
type NewsRow struct {
	Title       string
	Brief       string
	SourceName  string
	SourceDate  string
	URL         string
	Label       string
	Impact      int // signed impact score scaled to [-100, 100]
	GeneratedAt time.Time
	Lang        string
}

// RecentURLs returns the article URLs persisted within the trailing window.
// The pulse job excludes these from the candidate set before selection.
func (s *Store) RecentURLs(ctx context.Context, window time.Duration) (map[string]bool, error) {
	hours := int(window.Hours())
	rows, err := s.q.Query(ctx, fmt.Sprintf(
		"SELECT DISTINCT url FROM %s WHERE generated_at > NOW() - INTERVAL '%d hours'",
		newsTable, hours,
	))
	if err != nil {
		return nil, &Error{Op: "recent urls", Table: newsTable, Cause: err}
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var url *string
		if err := rows.Scan(&url); err != nil {
			return nil, &Error{Op: "recent urls scan", Table: newsTable, Cause: err}
		}
		if url != nil && *url != "" {
			seen[*url] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "recent urls", Table: newsTable, Cause: err}
	}
	return seen, nil
}

// InsertNews writes one language variant of a selected item.
func (s *Store) InsertNews(ctx context.Context, row NewsRow) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO `+newsTable+`
		 (title, brief_content, source_name, source_date, url, label, mri, generated_at, lang)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		row.Title, row.Brief, row.SourceName, row.SourceDate, row.URL,
		row.Label, row.Impact, row.GeneratedAt, row.Lang,
	)
	if err != nil {
		return &Error{Op: "insert", Table: newsTable, Cause: err}
	}
	return nil
}
