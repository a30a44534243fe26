package reconcile

import "time"

// Result summarizes one reconciliation pass for a single asset type and scope.
type Result struct {
	// Type is the reconciled asset type.
	Type string `json:"type"`

	// New counts records first seen in this pass.
	New int `json:"new"`

	// Updated counts records whose fingerprint changed (including revived
	// tombstones).
	Updated int `json:"updated"`

	// Unchanged counts records whose fingerprint matched.
	Unchanged int `json:"unchanged"`

	// Deleted counts records soft-deleted in this pass, cascaded dependents
	// included.
	Deleted int `json:"deleted"`

	// Errors describes per-record mapping failures. These records were
	// skipped; the pass itself still succeeded.
	Errors []string `json:"errors,omitempty"`
}

// RunReport aggregates a full reconciliation run over one scope.
type RunReport struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// ScopeID is the reconciled scope.
	ScopeID string `json:"scope_id"`

	// Results holds per-type outcomes in hierarchy order.
	Results []Result `json:"results"`

	// Failed lists asset types whose upstream fetch failed. Those types were
	// skipped with no local mutation.
	Failed map[string]string `json:"failed,omitempty"`

	// StartedAt/Duration describe run timing.
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Success reports whether every asset type reconciled without a fetch failure.
func (r *RunReport) Success() bool {
	return len(r.Failed) == 0
}
