package policy

import "time"

// Severity ranks a policy violation.
type Severity string

const (
	// SeverityWarning reports an advisory finding that does not block a run.
	SeverityWarning Severity = "warning"

	// SeverityError blocks the run.
	SeverityError Severity = "error"
)

// Policy is one named Rego module.
type Policy struct {
	// Name identifies the policy.
	Name string `json:"name"`

	// Description explains what the policy enforces.
	Description string `json:"description"`

	// Severity applies to violations that do not set their own.
	Severity Severity `json:"severity"`

	// Enabled gates evaluation.
	Enabled bool `json:"enabled"`

	// Rego is the policy source. Deny rules must live under a
	// "deny contains violation if" collection.
	Rego string `json:"rego"`
}

// Violation is one policy finding against one actor node.
type Violation struct {
	// Policy names the policy that produced the finding.
	Policy string `json:"policy"`

	// Actor is the offending actor name, when identifiable.
	Actor string `json:"actor,omitempty"`

	// Message is the human-readable finding.
	Message string `json:"message"`

	// Severity is the finding severity.
	Severity Severity `json:"severity"`
}

// Result summarizes an evaluation over a compiled script.
type Result struct {
	// Allowed is false when any error-severity violation was found.
	Allowed bool `json:"allowed"`

	// Violations lists every finding, warnings included.
	Violations []Violation `json:"violations"`

	// EvaluatedAt is when the evaluation ran.
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Node is the per-actor input document handed to Rego. The compiled actor
// tree is flattened into these before evaluation.
type Node struct {
	// Actor is the dotted actor name.
	Actor string `json:"actor"`

	// Desc is the description template, unresolved.
	Desc string `json:"desc"`

	// Timeout is the declared per-actor timeout in seconds.
	Timeout float64 `json:"timeout"`

	// WarnOnFailure is the declared failure policy.
	WarnOnFailure bool `json:"warn_on_failure"`

	// Depth is the nesting depth in the actor tree, the root being zero.
	Depth int `json:"depth"`
}
