package extract

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vietdataverse/fincrawl/internal/record"
)

// ErrExhausted is returned when every tier missed or produced an invalid
// candidate.
var ErrExhausted = errors.New("extract: all tiers exhausted")

// Request carries one page through the tier chain.
type Request struct {
	SourceID string
	Kind     record.Kind
	Date     time.Time
	Body     string
}

// Tier is one extraction strategy. A (nil, nil) return means the tier found
// nothing it recognizes and the chain should advance.
type Tier interface {
	Name() string
	Extract(ctx context.Context, req Request) (*record.Candidate, error)
}

// Chain runs tiers strictly in order. A tier error or an invalid candidate
// is logged and treated like a miss; only a validated candidate stops the
// chain.
type Chain struct {
	tiers []Tier
	log   *logrus.Entry
}

// NewChain builds a chain over the given tiers in the order they will run.
func NewChain(log *logrus.Entry, tiers ...Tier) *Chain {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Chain{tiers: tiers, log: log}
}

// Extract runs the chain and returns the first candidate that passes
// validation, or ErrExhausted.
func (c *Chain) Extract(ctx context.Context, req Request) (*record.Candidate, error) {
	for _, tier := range c.tiers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := c.log.WithFields(logrus.Fields{
			"source": req.SourceID,
			"tier":   tier.Name(),
		})

		cand, err := tier.Extract(ctx, req)
		if err != nil {
			log.WithError(err).Warn("tier failed, advancing")
			continue
		}
		if cand == nil {
			log.Debug("tier miss")
			continue
		}
		if err := record.Validate(cand); err != nil {
			log.WithError(err).Warn("candidate rejected, advancing")
			continue
		}
		log.WithField("fields", cand.Len()).Info("candidate accepted")
		return cand, nil
	}
	return nil, ErrExhausted
}
