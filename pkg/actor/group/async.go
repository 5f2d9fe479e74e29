package group

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/overture-run/overture/pkg/actor"
	"github.com/overture-run/overture/pkg/options"
)

// AsyncSpec extends the shared group schema with a worker cap. Zero means
// every child gets its own worker.
var AsyncSpec = options.Spec{
	"acts": Spec["acts"],
	"max_concurrent": {
		Kinds:   []options.Kind{options.KindInt},
		Default: 0,
		Help:    "maximum children executing at once, 0 for unlimited",
	},
}

// Async launches all children concurrently and waits for every one of them to
// reach a terminal state; siblings are never cancelled early because one
// failed. Failures not suppressed by the children themselves are aggregated
// into a single error raised after the last child finishes.
type Async struct {
	*actor.Base
	children []actor.Actor
}

// NewAsync builds an Async group from its config.
func NewAsync(cfg actor.Config, env actor.Environment) (actor.Actor, error) {
	base, err := actor.NewBase(cfg, env, AsyncSpec)
	if err != nil {
		return nil, err
	}
	children, err := buildChildren(base, env)
	if err != nil {
		return nil, err
	}
	return &Async{Base: base, children: children}, nil
}

// Execute implements actor.Actor.
func (g *Async) Execute(ctx context.Context) error {
	return g.Run(ctx, g.execute)
}

func (g *Async) execute(ctx context.Context) error {
	workers := int(options.Float(g.Options["max_concurrent"]))
	if workers <= 0 || workers > len(g.children) {
		workers = len(g.children)
	}

	queue := make(chan actor.Actor, len(g.children))
	for _, child := range g.children {
		queue <- child
	}
	close(queue)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs *multierror.Error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for child := range queue {
				err := child.Execute(ctx)
				mu.Lock()
				if err != nil {
					errs = multierror.Append(errs, err)
				}
				if child.Changed() {
					g.MarkChanged()
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if errs == nil {
		return nil
	}

	aggregated := errs.ErrorOrNil()
	if aggregated == nil {
		return nil
	}
	for _, err := range errs.Errors {
		var unrec *actor.UnrecoverableActorFailure
		if errors.As(err, &unrec) {
			return &actor.UnrecoverableActorFailure{
				Message: "one or more child actors failed",
				Err:     aggregated,
			}
		}
	}
	return actor.WrapRecoverable("one or more child actors failed", aggregated)
}
