package harness

import "github.com/roach88/menukit/internal/ir"

// TraceEvent is one dispatched step of a session.
type TraceEvent struct {
	Step int `json:"step"`

	// Seq is the dispatcher clock value of the step.
	Seq int64 `json:"seq"`

	// Element is the clicked element, or "submit" for a modal.
	Element string `json:"element"`

	// Response is ack, update, modal or error.
	Response string `json:"response"`

	// Menu is the path of the menu visible after the step.
	Menu string `json:"menu"`

	// Content is the visible message content after the step.
	Content string `json:"content,omitempty"`

	// IDs are the identifiers visible after the step, in emission order.
	IDs []string `json:"ids,omitempty"`

	// Error is the error code of a failed step.
	Error string `json:"error,omitempty"`

	// BlobBefore and BlobAfter are the trace store's state digests.
	BlobBefore string `json:"blob_before,omitempty"`
	BlobAfter  string `json:"blob_after,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion holds.
	Pass bool `json:"pass"`

	// Opened is the surface rendered before the first step.
	Opened TraceEvent `json:"opened"`

	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Menu and State describe the visible message after the last step.
	Menu  string     `json:"menu"`
	State []ir.Value `json:"state"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  []ir.Value{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
