package harness

// TraceEvent records one executed step. Identities appear as fixture names.
type TraceEvent struct {
	Seq    int      `json:"seq"`
	Op     string   `json:"op"`
	Caller string   `json:"caller,omitempty"`
	Target string   `json:"target,omitempty"`
	Value  *uint64  `json:"value,omitempty"`
	Case   string   `json:"case"`
	Result *Outcome `json:"result,omitempty"`
	Events []string `json:"events,omitempty"`
}

// Outcome is the successful result of a step.
type Outcome struct {
	Owner string  `json:"owner,omitempty"`
	Value *uint64 `json:"value,omitempty"`
	Admin string  `json:"admin,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains all executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
