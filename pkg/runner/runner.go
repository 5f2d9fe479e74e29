package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/overture-run/overture/pkg/actor"
	"github.com/overture-run/overture/pkg/policy"
	"github.com/overture-run/overture/pkg/script"
	"github.com/overture-run/overture/pkg/telemetry"
)

// Options configures one orchestration run. Exactly one of Script and Actor
// must be set.
type Options struct {
	// Script is a path or http(s) URL of the script to run.
	Script string

	// Actor runs a single named actor instead of a script.
	Actor string

	// ActorOptions are the options for a single-actor run.
	ActorOptions map[string]any

	// Tokens are the explicit substitution tokens, merged over the process
	// environment for %VAR% references and forming the init context for
	// {VAR} references.
	Tokens map[string]string

	// DryOnly stops after the rehearsal pass.
	DryOnly bool

	// Explain prints the compiled actor tree without executing anything.
	Explain bool

	// SkipPolicy disables the policy gate.
	SkipPolicy bool

	// PolicyDir loads additional .rego policies before evaluation.
	PolicyDir string

	// Out receives explain output.
	Out io.Writer

	// Log is the structured logger for the run.
	Log zerolog.Logger
}

// Runner executes one run. It is single-use: state between invocations is
// deliberately not persisted.
type Runner struct {
	opts   Options
	events *telemetry.EventPublisher
}

// New validates the options and builds a runner.
func New(opts Options) (*Runner, error) {
	if (opts.Script == "") == (opts.Actor == "") {
		return nil, &actor.InvalidScriptError{
			Diag: fmt.Errorf("exactly one of script and actor must be given"),
		}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Runner{
		opts:   opts,
		events: telemetry.NewEventPublisher(opts.Log),
	}, nil
}

// Execute runs the full pipeline: compile, policy gate, rehearsal, real run.
func (r *Runner) Execute(ctx context.Context) error {
	cfgs, err := r.compile(ctx)
	if err != nil {
		return err
	}

	if !r.opts.SkipPolicy {
		if err := r.gate(ctx, cfgs); err != nil {
			return err
		}
	}

	root := script.Root(cfgs)

	if r.opts.Explain {
		r.explain(root, 0)
		return nil
	}

	telemetry.Default().RunStarted()
	r.events.Publish(telemetry.EventTypeRunStarted, "", "Run started", "info")

	if skipDry() {
		r.opts.Log.Warn().Msg("SKIP_DRY set, skipping the rehearsal pass")
	} else if err := r.pass(ctx, root, true); err != nil {
		r.events.Publish(telemetry.EventTypeRunFailed, root.Actor,
			"Rehearsal failed, aborting before any mutation", "error")
		return err
	}

	// A dry-only run never reaches the execution pass, with or without the
	// SKIP_DRY bypass in effect.
	if r.opts.DryOnly {
		r.events.Publish(telemetry.EventTypeRunCompleted, root.Actor,
			"Rehearsal completed", "info")
		return nil
	}

	if err := r.pass(ctx, root, false); err != nil {
		r.events.Publish(telemetry.EventTypeRunFailed, root.Actor, "Run failed", "error")
		return err
	}
	r.events.Publish(telemetry.EventTypeRunCompleted, root.Actor, "Run completed", "info")
	return nil
}

// compile produces the actor configs for the run.
func (r *Runner) compile(ctx context.Context) ([]actor.Config, error) {
	if r.opts.Script != "" {
		compiler := script.NewCompiler(r.opts.Log)
		return compiler.Compile(ctx, r.opts.Script, r.opts.Tokens)
	}

	cfg := actor.Config{
		Actor:   r.opts.Actor,
		Options: r.opts.ActorOptions,
	}
	if _, err := actor.Lookup(cfg.Actor); err != nil {
		return nil, err
	}
	return []actor.Config{cfg}, nil
}

// gate evaluates the policy engine over the compiled configs. Violations at
// error severity abort the run as a build failure.
func (r *Runner) gate(ctx context.Context, cfgs []actor.Config) error {
	engine, err := policy.NewEngine(r.opts.Log)
	if err != nil {
		return err
	}
	if r.opts.PolicyDir != "" {
		if err := engine.LoadDir(r.opts.PolicyDir); err != nil {
			return err
		}
	}

	result, err := engine.Evaluate(ctx, cfgs)
	if err != nil {
		return err
	}
	for _, v := range result.Violations {
		if v.Severity == policy.SeverityWarning {
			r.opts.Log.Warn().Str("policy", v.Policy).Str("actor", v.Actor).
				Msg(v.Message)
		}
	}
	if !result.Allowed {
		var denials []string
		for _, v := range result.Violations {
			if v.Severity == policy.SeverityError {
				denials = append(denials, fmt.Sprintf("%s: %s", v.Policy, v.Message))
			}
		}
		r.events.Publish(telemetry.EventTypePolicyDenied, "",
			"Policy gate denied the script", "error")
		return &actor.InvalidScriptError{
			Source: r.opts.Script,
			Diag:   fmt.Errorf("policy gate denied the script: %s", strings.Join(denials, "; ")),
		}
	}
	return nil
}

// pass builds the actor tree for one mode and executes it. Building happens
// per pass: actors execute exactly once, so rehearsal and real run each get
// a fresh tree.
func (r *Runner) pass(ctx context.Context, root actor.Config, dry bool) error {
	log := r.opts.Log.With().Bool("dry", dry).Logger()
	instance, err := actor.New(root, actor.Environment{
		Dry:    dry,
		Tokens: r.opts.Tokens,
		Log:    log,
		Events: r.events,
	})
	if err != nil {
		return err
	}

	if dry {
		log.Info().Msg("Starting rehearsal pass")
	} else {
		log.Info().Msg("Starting execution pass")
	}
	return instance.Execute(ctx)
}

// explain prints the actor tree without executing it.
func (r *Runner) explain(cfg actor.Config, depth int) {
	indent := strings.Repeat("  ", depth)
	desc := cfg.Desc
	if desc == "" {
		desc = cfg.Actor
	}
	fmt.Fprintf(r.opts.Out, "%s- %s (%s)\n", indent, desc, cfg.Actor)
	if children, err := actor.ConfigsFromAny(cfg.Options["acts"]); err == nil {
		for _, child := range children {
			r.explain(child, depth+1)
		}
	}
}

// skipDry preserves the SKIP_DRY bypass verbatim: any non-empty value skips
// the rehearsal.
func skipDry() bool {
	return os.Getenv("SKIP_DRY") != ""
}
