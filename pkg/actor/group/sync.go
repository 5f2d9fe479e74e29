package group

import (
	"context"

	"github.com/overture-run/overture/pkg/actor"
)

// Sync executes its children one at a time, in declaration order. A child
// whose own warn_on_failure suppressed its failure returns nil and the group
// continues; any propagated failure stops the group immediately and the
// remaining children never run.
type Sync struct {
	*actor.Base
	children []actor.Actor
}

// NewSync builds a Sync group from its config.
func NewSync(cfg actor.Config, env actor.Environment) (actor.Actor, error) {
	base, err := actor.NewBase(cfg, env, Spec)
	if err != nil {
		return nil, err
	}
	children, err := buildChildren(base, env)
	if err != nil {
		return nil, err
	}
	return &Sync{Base: base, children: children}, nil
}

// Execute implements actor.Actor.
func (g *Sync) Execute(ctx context.Context) error {
	return g.Run(ctx, g.execute)
}

func (g *Sync) execute(ctx context.Context) error {
	for _, child := range g.children {
		if err := child.Execute(ctx); err != nil {
			return err
		}
		if child.Changed() {
			g.MarkChanged()
		}
	}
	return nil
}
