package runner

import (
	"fmt"

	"github.com/agentstation/utc"

	"github.com/tracksync/bridge/pkg/reconcile"
	"github.com/tracksync/bridge/pkg/types"
)

// Report is the outcome of one full pass across all mappings.
type Report struct {
	RunID      string
	StartedAt  utc.Time
	FinishedAt utc.Time
	Mappings   []MappingReport
}

// MappingReport records one mapping's pass outcome.
type MappingReport struct {
	Mapping string
	Name    string
	Result  *reconcile.Result
	Err     error
}

func newReport(runID string) *Report {
	return &Report{
		RunID:     runID,
		StartedAt: utc.Now(),
	}
}

func (r *Report) add(m *types.Mapping, result *reconcile.Result, err error) {
	r.Mappings = append(r.Mappings, MappingReport{
		Mapping: m.ID,
		Name:    m.Name,
		Result:  result,
		Err:     err,
	})
}

func (r *Report) finish() {
	r.FinishedAt = utc.Now()
}

// Failed returns the number of mappings whose pass failed.
func (r *Report) Failed() int {
	failed := 0
	for _, m := range r.Mappings {
		if m.Err != nil {
			failed++
		}
	}
	return failed
}

// Summary returns a human-readable account of the whole run.
func (r *Report) Summary() string {
	return fmt.Sprintf("run %s: %d mappings processed, %d failed, took %s",
		r.RunID, len(r.Mappings), r.Failed(), r.FinishedAt.Sub(r.StartedAt))
}
