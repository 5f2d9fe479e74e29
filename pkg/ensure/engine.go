package ensure

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/overture-run/overture/pkg/actor"
)

// Resource is the top-level state pair every ensurable actor implements.
// GetState returns the current logical state (present/absent); SetState
// creates or destroys the resource so that attribute getters become
// meaningful afterwards (in dry mode, against a mocked fresh resource).
type Resource interface {
	GetState(ctx context.Context) (string, error)
	SetState(ctx context.Context) error
}

// Precacher is an optional bulk-fetch hook run before any comparison, so the
// attribute loop does not issue one remote call per attribute.
type Precacher interface {
	Precache(ctx context.Context) error
}

// Attribute is the registered handler triple for one managed option. Exactly
// one of Get or Compare must be set; Set must be set. Compare, when present,
// fetches and diffs itself and is expected to log a human-readable diff when
// unequal. With only Get, the engine compares the fetched value against the
// resolved option value.
type Attribute struct {
	Name    string
	Get     func(ctx context.Context) (any, error)
	Compare func(ctx context.Context) (bool, error)
	Set     func(ctx context.Context) error
}

// Engine drives one convergence pass for one actor instance. Attributes
// reconcile strictly in registration order: the engine is order-preserving
// and infers no dependencies, so actors must register dependent attributes
// after the ones they rely on.
type Engine struct {
	base       *actor.Base
	resource   Resource
	attributes []Attribute
	status     Status
}

// New validates the handler table and builds the engine. An attribute with
// neither Get nor Compare, with both, or without Set is a programming error
// in the actor type, reported eagerly at construction.
func New(base *actor.Base, resource Resource, attributes []Attribute) (*Engine, error) {
	var problems *multierror.Error
	seen := make(map[string]bool, len(attributes))
	for _, attr := range attributes {
		if attr.Name == "" {
			problems = multierror.Append(problems,
				fmt.Errorf("attribute handler with empty name"))
			continue
		}
		if seen[attr.Name] {
			problems = multierror.Append(problems,
				fmt.Errorf("attribute %q registered twice", attr.Name))
		}
		seen[attr.Name] = true
		if attr.Get == nil && attr.Compare == nil {
			problems = multierror.Append(problems,
				fmt.Errorf("attribute %q has neither getter nor comparator", attr.Name))
		}
		if attr.Get != nil && attr.Compare != nil {
			problems = multierror.Append(problems,
				fmt.Errorf("attribute %q has both getter and comparator", attr.Name))
		}
		if attr.Set == nil {
			problems = multierror.Append(problems,
				fmt.Errorf("attribute %q has no setter", attr.Name))
		}
	}
	if err := problems.ErrorOrNil(); err != nil {
		return nil, actor.NewInvalidOptionsError(base.Name(), err)
	}

	return &Engine{
		base:       base,
		resource:   resource,
		attributes: attributes,
		status:     StatusInit,
	}, nil
}

// Status returns how far the current pass has progressed.
func (e *Engine) Status() Status { return e.status }

// Converge runs one full reconcile pass. Errors from getters, setters and
// comparators propagate unmodified; the engine never swallows them.
func (e *Engine) Converge(ctx context.Context) error {
	if pre, ok := e.resource.(Precacher); ok {
		if err := pre.Precache(ctx); err != nil {
			return err
		}
	}
	e.status = StatusPrecached

	desired := desiredState(e.base.Options)
	current, err := e.resource.GetState(ctx)
	if err != nil {
		return err
	}

	if current != desired {
		e.base.Log.Info().
			Str("current", current).Str("desired", desired).
			Msg("Resource state differs, applying")
		if err := e.resource.SetState(ctx); err != nil {
			return err
		}
		e.base.MarkChanged()
		if desired == StateAbsent {
			// No attribute reconciliation against a deleted resource.
			e.status = StatusConverged
			return nil
		}
	} else if desired == StateAbsent {
		e.status = StatusConverged
		return nil
	}
	e.status = StatusStateChecked

	for _, attr := range e.attributes {
		equal, err := e.compare(ctx, attr)
		if err != nil {
			return err
		}
		if equal {
			continue
		}
		e.base.Log.Info().Str("attribute", attr.Name).
			Msg("Attribute differs from desired value, applying")
		if err := attr.Set(ctx); err != nil {
			return err
		}
		e.base.MarkChanged()
	}

	e.status = StatusConverged
	return nil
}

// compare evaluates one attribute: the comparator when registered, otherwise
// the getter against the resolved option value.
func (e *Engine) compare(ctx context.Context, attr Attribute) (bool, error) {
	if attr.Compare != nil {
		return attr.Compare(ctx)
	}
	got, err := attr.Get(ctx)
	if err != nil {
		return false, err
	}
	want := e.base.Options[attr.Name]
	equal := equalValues(got, want)
	if !equal {
		e.base.Log.Debug().Str("attribute", attr.Name).
			Interface("actual", got).Interface("desired", want).
			Msg("Attribute mismatch")
	}
	return equal, nil
}

// desiredState reads the "state" option, defaulting to present.
func desiredState(opts map[string]any) string {
	if s, ok := opts["state"].(string); ok && s != "" {
		return s
	}
	return StatePresent
}
