package observability

import (
	"fmt"
	"strings"
	"time"

	"github.com/vietdataverse/fincrawl/internal/pipeline"
)

// FormatSummary renders a job summary as the fixed-width block printed at
// the end of a run.
func FormatSummary(s *pipeline.Summary) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Job %s (%s) - %s\n", s.Job, s.RunID, s.Started.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "%s\n", rule)

	for _, r := range s.Results {
		status := strings.ToUpper(r.Status.String())
		line := fmt.Sprintf("  %-12s %-10s inserted=%d skipped=%d (%s)",
			r.SourceID, status, r.Inserted, r.Skipped, r.Elapsed.Round(time.Millisecond))
		if r.Tier != 0 {
			line += fmt.Sprintf(" tier=%s", r.Tier)
		}
		if r.Err != nil {
			line += fmt.Sprintf(" error=%v", r.Err)
		}
		fmt.Fprintf(&b, "%s\n", line)
	}

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Succeeded %d, failed %d\n", s.Succeeded(), s.Failed())
	return b.String()
}
