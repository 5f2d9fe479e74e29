package ensure

import "fmt"

// Status tracks how far a convergence pass has progressed.
type Status string

const (
	// StatusInit is the starting status before any remote call.
	StatusInit Status = "init"

	// StatusPrecached indicates bulk remote state has been fetched.
	StatusPrecached Status = "precached"

	// StatusStateChecked indicates the top-level present/absent state has
	// been reconciled and attribute reconciliation may begin.
	StatusStateChecked Status = "state-checked"

	// StatusConverged is the terminal status of a successful pass.
	StatusConverged Status = "converged"
)

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	return s == StatusConverged
}

// Validate checks the status is one of the known values.
func (s Status) Validate() error {
	switch s {
	case StatusInit, StatusPrecached, StatusStateChecked, StatusConverged:
		return nil
	default:
		return fmt.Errorf("invalid convergence status: %s", s)
	}
}

// Desired top-level resource states.
const (
	// StatePresent asks for the resource to exist.
	StatePresent = "present"

	// StateAbsent asks for the resource to be deleted. Attribute
	// reconciliation never runs against a deleted resource.
	StateAbsent = "absent"
)
