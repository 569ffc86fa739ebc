// Package pipeline orchestrates crawl jobs. A job runs its sources strictly
// in sequence; each source moves through a fixed set of states and a failure
// in one source never stops the ones after it.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vietdataverse/fincrawl/internal/record"
)

// Status is a source's position in its crawl lifecycle.
type Status int

const (
	StatusPending Status = iota
	StatusFetching
	StatusExtracting
	StatusValidating
	StatusPersisting
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFetching:
		return "fetching"
	case StatusExtracting:
		return "extracting"
	case StatusValidating:
		return "validating"
	case StatusPersisting:
		return "persisting"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the terminal report for one source in a job run.
type Result struct {
	SourceID string
	Status   Status
	Tier     record.Tier // zero for sources that bypass the tier chain
	Inserted int
	Skipped  int
	Err      error
	Elapsed  time.Duration
}

// Task is one unit of crawl work, usually one source.
type Task interface {
	ID() string
	Run(ctx context.Context) Result
}

// Summary aggregates a whole job run.
type Summary struct {
	Job     string
	RunID   string
	Started time.Time
	Results []Result
}

// Succeeded counts sources that finished the lifecycle.
func (s *Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == StatusDone {
			n++
		}
	}
	return n
}

// Failed counts sources that stopped short.
func (s *Summary) Failed() int {
	return len(s.Results) - s.Succeeded()
}

// AllFailed reports whether no source finished. The job exit status hinges
// on this: partial success is still success.
func (s *Summary) AllFailed() bool {
	return len(s.Results) > 0 && s.Succeeded() == 0
}

// Runner executes tasks one at a time under a shared run ID.
type Runner struct {
	log *logrus.Entry
}

func NewRunner(log *logrus.Entry) *Runner {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{log: log}
}

// Run executes every task in order, even after failures, and returns the
// aggregated summary. Only context cancellation stops the sequence early.
func (r *Runner) Run(ctx context.Context, job string, tasks ...Task) *Summary {
	summary := &Summary{
		Job:     job,
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	log := r.log.WithFields(logrus.Fields{"job": job, "run_id": summary.RunID})
	log.WithField("sources", len(tasks)).Info("job started")

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		res := task.Run(ctx)
		res.SourceID = task.ID()
		res.Elapsed = time.Since(start)
		summary.Results = append(summary.Results, res)

		entry := log.WithFields(logrus.Fields{
			"source":   res.SourceID,
			"status":   res.Status.String(),
			"inserted": res.Inserted,
			"skipped":  res.Skipped,
			"elapsed":  res.Elapsed.Round(time.Millisecond).String(),
		})
		if res.Err != nil {
			entry.WithError(res.Err).Error("source failed")
		} else {
			entry.Info("source finished")
		}
	}

	log.WithFields(logrus.Fields{
		"succeeded": summary.Succeeded(),
		"failed":    summary.Failed(),
	}).Info("job finished")
	return summary
}
