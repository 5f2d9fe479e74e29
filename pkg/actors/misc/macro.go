package misc

import (
	"context"
	"fmt"

	"github.com/overture-run/overture/pkg/actor"
	"github.com/overture-run/overture/pkg/options"
	"github.com/overture-run/overture/pkg/script"
)

var macroSpec = options.Spec{
	"macro": {
		Kinds:   []options.Kind{options.KindString},
		Default: options.Required,
		Help:    "path or http(s) URL of the script to run",
	},
	"tokens": {
		Kinds:   []options.Kind{options.KindMap},
		Default: map[string]any{},
		Help:    "token mapping substituted into the nested script",
	},
}

// Macro compiles a nested script at construction time and runs it as a
// single child actor. The nested script gets its own token scope from the
// tokens option; the parent's init context is deliberately not propagated
// unless re-supplied there.
type Macro struct {
	*actor.Base
	child actor.Actor
}

// NewMacro builds a Macro actor, compiling the nested script eagerly so a
// broken sub-script fails the build, not the run.
func NewMacro(cfg actor.Config, env actor.Environment) (actor.Actor, error) {
	base, err := actor.NewBase(cfg, env, macroSpec)
	if err != nil {
		return nil, err
	}

	macroTokens, err := scalarTokens(base.Options["tokens"])
	if err != nil {
		return nil, actor.NewInvalidOptionsError(cfg.Actor, err)
	}

	source := options.String(base.Options["macro"])
	compiler := script.NewCompiler(base.Log)
	cfgs, err := compiler.Compile(context.Background(), source, macroTokens)
	if err != nil {
		return nil, err
	}

	child, err := actor.New(script.Root(cfgs), actor.Environment{
		Dry:    env.Dry,
		Tokens: macroTokens,
		Log:    base.Log,
		Events: env.Events,
	})
	if err != nil {
		return nil, err
	}

	return &Macro{Base: base, child: child}, nil
}

// Execute implements actor.Actor.
func (a *Macro) Execute(ctx context.Context) error {
	return a.Run(ctx, a.execute)
}

func (a *Macro) execute(ctx context.Context) error {
	err := a.child.Execute(ctx)
	if a.child.Changed() {
		a.MarkChanged()
	}
	return err
}

// scalarTokens flattens the tokens option into the string map the compiler
// takes; non-scalar values are rejected.
func scalarTokens(v any) (map[string]string, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		switch t := value.(type) {
		case string:
			out[key] = t
		case bool, int, int32, int64, float32, float64:
			out[key] = fmt.Sprintf("%v", t)
		default:
			return nil, fmt.Errorf("token %q has non-scalar value (%T)", key, value)
		}
	}
	return out, nil
}

func init() {
	actor.MustRegister("misc.Macro", macroSpec, NewMacro)
}
