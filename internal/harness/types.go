package harness

import "github.com/roach88/synth/internal/synth"

// Trace operations.
const (
	OpBuild = "build"
	OpNew   = "new"
	OpCall  = "call"
)

// TraceEvent is one build, instantiation or call, in execution order.
//
// Action is "build:<alias>" for builds, "new:<alias>" for instantiations and
// "<object>.<method>" for calls.
type TraceEvent struct {
	Seq     int64    `json:"seq"`
	Op      string   `json:"op"`
	Action  string   `json:"action"`
	As      string   `json:"as,omitempty"`
	Args    []string `json:"args,omitempty"`
	Backend string   `json:"backend,omitempty"`
	Members []string `json:"members,omitempty"`
	Result  string   `json:"result,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Failed reports whether the event ended in an error.
func (e TraceEvent) Failed() bool { return e.Error != "" }

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every build, instantiation and call in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Types holds the successfully built types by alias.
	Types map[string]*synth.Type `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Types:  map[string]*synth.Type{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addEvent appends e with the next sequence number.
func (r *Result) addEvent(e TraceEvent) {
	e.Seq = int64(len(r.Trace) + 1)
	r.Trace = append(r.Trace, e)
}
