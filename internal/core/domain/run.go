package domain

import (
	"fmt"
	"time"
)

// CutoffReason explains why a paginated crawl stopped.
type CutoffReason string

// Cutoff reasons. All are terminal for the source's run.
const (
	// CutoffNone means the crawl has not stopped (or never started).
	CutoffNone CutoffReason = ""

	// CutoffEndOfData means the source ran out of items.
	CutoffEndOfData CutoffReason = "end_of_data"

	// CutoffDuplicate means an already-known item was reached.
	CutoffDuplicate CutoffReason = "duplicate"

	// CutoffFullScan means the recency order was violated, so the duplicate
	// cutoff was disabled and the source was read to the end.
	CutoffFullScan CutoffReason = "order_violation_full_scan"
)

// SourceReport holds the statistics of one source within a run.
type SourceReport struct {
	SourceID string

	Pages     int
	Fetched   int
	Malformed int
	Cutoff    CutoffReason

	Created int
	Merged  int
	Skipped int
	Failed  int

	StartedAt time.Time
	EndedAt   time.Time

	// Err is set when the source's run was aborted.
	Err error
}

// Produced returns the number of records written or confirmed.
func (r *SourceReport) Produced() int {
	return r.Created + r.Merged + r.Skipped
}

// Count increments the counter for an outcome.
func (r *SourceReport) Count(outcome WriteOutcome) {
	switch outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeMerged:
		r.Merged++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Summary returns a one-line description for notifications.
func (r *SourceReport) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("[%s] failed: %v", r.SourceID, r.Err)
	}
	return fmt.Sprintf("[%s] %d records (created %d, merged %d, unchanged %d, failed %d, malformed %d) across %d pages, stop: %s",
		r.SourceID, r.Produced(), r.Created, r.Merged, r.Skipped, r.Failed, r.Malformed, r.Pages, r.Cutoff)
}

// RunReport aggregates one full ingestion pass.
type RunReport struct {
	StartedAt time.Time
	EndedAt   time.Time
	Sources   []SourceReport
}

// Produced returns the total number of records produced across sources.
func (r *RunReport) Produced() int {
	total := 0
	for i := range r.Sources {
		total += r.Sources[i].Produced()
	}
	return total
}

// FailedSources returns the IDs of sources whose run was aborted.
func (r *RunReport) FailedSources() []string {
	var failed []string
	for i := range r.Sources {
		if r.Sources[i].Err != nil {
			failed = append(failed, r.Sources[i].SourceID)
		}
	}
	return failed
}

// Duration returns how long the run took.
func (r *RunReport) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
