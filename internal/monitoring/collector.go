package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/planner-contacts/internal/model"
	"github.com/sells-group/planner-contacts/internal/store"
)

// MetricsSnapshot holds a point-in-time view of scrape run health.
type MetricsSnapshot struct {
	// Run counts within the lookback window.
	RunsTotal    int     `json:"runs_total"`
	RunsComplete int     `json:"runs_complete"`
	RunsFailed   int     `json:"runs_failed"`
	RunsRunning  int     `json:"runs_running"`
	FailRate     float64 `json:"fail_rate"`

	// Totals over completed runs.
	Records      int     `json:"records"`
	Websites     int     `json:"websites"`
	EmailsFound  int     `json:"emails_found"`
	WebsiteYield float64 `json:"website_yield"`
	EmailYield   float64 `json:"email_yield"`

	// Metadata.
	LastCompleteAt time.Time `json:"last_complete_at,omitempty"`
	LookbackHours  int       `json:"lookback_hours"`
	CollectedAt    time.Time `json:"collected_at"`
}

// RunLister is the store query the collector needs.
type RunLister interface {
	ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error)
}

// Collector gathers metrics from the run store.
type Collector struct {
	runs RunLister
}

// NewCollector creates a new metrics collector.
func NewCollector(runs RunLister) *Collector {
	return &Collector{runs: runs}
}

// Collect gathers a snapshot of run metrics over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := time.Now().UTC()
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}

	runs, err := c.runs.ListRuns(ctx, store.RunFilter{
		CreatedAfter: now.Add(-time.Duration(lookbackHours) * time.Hour),
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.RunsTotal = len(runs)
	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			snap.RunsComplete++
			snap.Records += r.Records
			snap.Websites += r.Websites
			snap.EmailsFound += r.EmailsFound
			if r.UpdatedAt.After(snap.LastCompleteAt) {
				snap.LastCompleteAt = r.UpdatedAt
			}
		case model.RunStatusFailed:
			snap.RunsFailed++
		case model.RunStatusRunning:
			snap.RunsRunning++
		}
	}

	if finished := snap.RunsComplete + snap.RunsFailed; finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
	}
	if snap.Records > 0 {
		snap.WebsiteYield = float64(snap.Websites) / float64(snap.Records)
		snap.EmailYield = float64(snap.EmailsFound) / float64(snap.Records)
	}

	return snap, nil
}
