package reconciler

import (
	"fmt"
	"time"
)

// Outcome is the terminal state of one (repository, branch) pair.
type Outcome string

const (
	// OutcomeCreated indicates the ownership file was created.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated indicates the ownership file was overwritten.
	OutcomeUpdated Outcome = "updated"
	// OutcomeUnchanged indicates the remote content already matched.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeConflict indicates divergent content was found and left
	// in place because force mode was off.
	OutcomeConflict Outcome = "conflict"
	// OutcomeSkipped indicates a write was suppressed by dry-run mode.
	OutcomeSkipped Outcome = "skipped"
)

// BranchResult records the outcome for one branch of one repository.
type BranchResult struct {
	Repository string
	Branch     string
	Outcome    Outcome
}

// Result aggregates the outcomes of a reconciliation run.
type Result struct {
	Branches []BranchResult

	// Counts per outcome
	Created   int
	Updated   int
	Unchanged int
	Conflicts int
	Skipped   int

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewResult creates a result with the start time set.
func NewResult() *Result {
	return &Result{StartTime: time.Now()}
}

// Record adds one branch outcome to the result.
func (r *Result) Record(repo, branch string, outcome Outcome) {
	r.Branches = append(r.Branches, BranchResult{
		Repository: repo,
		Branch:     branch,
		Outcome:    outcome,
	})

	switch outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeConflict:
		r.Conflicts++
	case OutcomeSkipped:
		r.Skipped++
	}
}

// Clean reports whether every branch of every repository ended in a
// non-divergent state. This maps directly to the process exit code:
// conflicts, and writes suppressed by dry-run, both count as unclean.
func (r *Result) Clean() bool {
	return r.Conflicts == 0 && r.Skipped == 0
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	if r.Conflicts > 0 {
		return fmt.Sprintf("%d branches diverged; %d created, %d updated, %d already in sync",
			r.Conflicts, r.Created, r.Updated, r.Unchanged)
	}
	if r.Skipped > 0 {
		return fmt.Sprintf("dry run: %d writes pending, %d already in sync", r.Skipped, r.Unchanged)
	}
	return fmt.Sprintf("%d created, %d updated, %d already in sync", r.Created, r.Updated, r.Unchanged)
}
