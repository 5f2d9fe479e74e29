package misc

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/overture-run/overture/pkg/actor"
	"github.com/overture-run/overture/pkg/options"
)

var sleepSpec = options.Spec{
	"sleep": {
		Kinds:   []options.Kind{options.KindFloat, options.KindString},
		Default: options.Required,
		Help:    "seconds to sleep, fractional values allowed",
	},
}

// Sleep pauses execution for a configured number of seconds. In dry mode the
// pause is logged, not taken.
type Sleep struct {
	*actor.Base
	duration time.Duration
}

// NewSleep builds a Sleep actor from its config.
func NewSleep(cfg actor.Config, env actor.Environment) (actor.Actor, error) {
	base, err := actor.NewBase(cfg, env, sleepSpec)
	if err != nil {
		return nil, err
	}

	seconds, err := parseSeconds(base.Options["sleep"])
	if err != nil {
		return nil, actor.NewInvalidOptionsError(cfg.Actor, err)
	}

	return &Sleep{
		Base:     base,
		duration: time.Duration(seconds * float64(time.Second)),
	}, nil
}

// Execute implements actor.Actor.
func (a *Sleep) Execute(ctx context.Context) error {
	return a.Run(ctx, a.execute)
}

func (a *Sleep) execute(ctx context.Context) error {
	return a.Mutate(ctx, "Would sleep %s", []any{a.duration}, func(ctx context.Context) error {
		select {
		case <-time.After(a.duration):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// parseSeconds accepts the numeric kinds and numeric strings, which scripts
// produce when the value comes from token substitution.
func parseSeconds(v any) (float64, error) {
	seconds := options.Float(v)
	if s, ok := v.(string); ok {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("sleep value %q is not a number", s)
		}
		seconds = parsed
	}
	if seconds < 0 {
		return 0, fmt.Errorf("sleep value %v must not be negative", v)
	}
	return seconds, nil
}

func init() {
	actor.MustRegister("misc.Sleep", sleepSpec, NewSleep)
}
