package harness

import "github.com/roach88/limbic/internal/core"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success.
	// True when every expect clause and every engine invariant held.
	Pass bool `json:"pass"`

	// Trace contains every snapshot the run produced, in tick order.
	// Used for expectation diagnostics and golden comparison.
	Trace []core.Snapshot `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the last snapshot of the run.
	Final core.Snapshot `json:"final"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []core.Snapshot{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
