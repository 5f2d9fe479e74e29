package group

import (
	"fmt"

	"github.com/overture-run/overture/pkg/actor"
	"github.com/overture-run/overture/pkg/options"
)

// Spec is the option schema shared by both group kinds. Groups default to no
// timeout of their own; they inherit purely from their children.
var Spec = options.Spec{
	"acts": {
		Kinds:   []options.Kind{options.KindList},
		Default: options.Required,
		Help:    "ordered list of child actor nodes",
	},
}

// buildChildren instantiates the child actors declared in options.acts. Every
// child inherits the parent's dry flag and its own copy of the init tokens;
// children are created fresh per parent and never shared.
func buildChildren(base *actor.Base, env actor.Environment) ([]actor.Actor, error) {
	cfgs, err := actor.ConfigsFromAny(base.Options["acts"])
	if err != nil {
		return nil, actor.NewInvalidOptionsError(base.Name(), err)
	}
	if len(cfgs) == 0 {
		return nil, actor.NewInvalidOptionsError(base.Name(),
			fmt.Errorf("acts must contain at least one actor node"))
	}

	children := make([]actor.Actor, 0, len(cfgs))
	for i, cfg := range cfgs {
		childEnv := actor.Environment{
			Dry:    env.Dry,
			Tokens: copyTokens(base.InitTokens),
			Log:    base.Log,
			Events: env.Events,
		}
		child, err := actor.New(cfg, childEnv)
		if err != nil {
			return nil, fmt.Errorf("child %d (%s): %w", i, cfg.Actor, err)
		}
		children = append(children, child)
	}
	return children, nil
}

func copyTokens(tokens map[string]string) map[string]string {
	out := make(map[string]string, len(tokens))
	for k, v := range tokens {
		out[k] = v
	}
	return out
}

func init() {
	actor.MustRegister("group.Sync", Spec, NewSync)
	actor.MustRegister("group.Async", AsyncSpec, NewAsync)
}
