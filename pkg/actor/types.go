package actor

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the immutable description of one actor node in a script. It is
// built once from the parsed script document and consumed once by the
// factory.
type Config struct {
	// Desc is a human-readable description template. {VAR} references are
	// resolved against the init context at construction.
	Desc string `json:"desc,omitempty" yaml:"desc,omitempty"`

	// Actor is the dotted actor name (e.g. "misc.Sleep", "group.Async").
	Actor string `json:"actor" yaml:"actor" validate:"required"`

	// Options is the actor-specific options mapping.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`

	// WarnOnFailure converts a recoverable execution failure into a logged
	// warning and a nil result.
	WarnOnFailure bool `json:"warn_on_failure,omitempty" yaml:"warn_on_failure,omitempty"`

	// Timeout is the per-actor timeout in seconds. Zero disables the guard.
	Timeout float64 `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gte=0"`

	// Condition gates execution: a bool, or a {VAR} template evaluated
	// against the recognized truthy/falsy literals. Absent means execute.
	Condition any `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Actor is a single executable unit of orchestration. Execute is invoked
// exactly once per instance; a nil return covers success, a skipped
// condition, and a warn-suppressed failure alike.
type Actor interface {
	// Execute runs the actor to a terminal state.
	Execute(ctx context.Context) error

	// Describe returns the resolved description for logs and explain output.
	Describe() string

	// Changed reports whether execution mutated any remote state.
	Changed() bool
}

// ConfigsFromAny converts a decoded "acts" option value (a slice of raw
// mappings) into actor configs. Composite actors use this to build their
// children from options.
func ConfigsFromAny(v any) ([]Config, error) {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("acts is not a list of actor nodes: %w", err)
	}
	var cfgs []Config
	if err := yaml.Unmarshal(raw, &cfgs); err != nil {
		return nil, fmt.Errorf("acts is not a list of actor nodes: %w", err)
	}
	return cfgs, nil
}
