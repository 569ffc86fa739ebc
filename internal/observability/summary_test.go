package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vietdataverse/fincrawl/internal/pipeline"
	"github.com/vietdataverse/fincrawl/internal/record"
)

func TestFormatSummary(t *testing.T) {
	s := &pipeline.Summary{
		Job:     "termdepo",
		RunID:   "run-1",
		Started: time.Date(2026, 2, 17, 8, 30, 0, 0, time.UTC),
		Results: []pipeline.Result{
			{SourceID: "ACB", Status: pipeline.StatusDone, Tier: record.TierStructured, Inserted: 1},
			{SourceID: "VCB", Status: pipeline.StatusFailed, Err: errors.New("blocked")},
		},
	}

	out := FormatSummary(s)
	assert.Contains(t, out, "Job termdepo (run-1) - 2026-02-17 08:30")
	assert.Contains(t, out, "ACB")
	assert.Contains(t, out, "DONE")
	assert.Contains(t, out, "tier=structured")
	assert.Contains(t, out, "error=blocked")
	assert.Contains(t, out, "Succeeded 1, failed 1")
	assert.Contains(t, out, "FAILED")
}
