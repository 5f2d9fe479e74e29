package actor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/overture-run/overture/pkg/options"
	"github.com/overture-run/overture/pkg/telemetry"
	"github.com/overture-run/overture/pkg/tokens"
)

// Environment carries the per-run context every actor is built with.
type Environment struct {
	// Dry marks the rehearsal pass: mutations are logged, not performed.
	Dry bool

	// Tokens is the init context for {VAR} substitution. Each actor receives
	// its own copy; composites copy again before handing it to children.
	Tokens map[string]string

	// Log is the structured logger for this run.
	Log zerolog.Logger

	// Events receives per-actor timeline events when set.
	Events *telemetry.EventPublisher
}

// Base carries the shared state and execution wrapper every actor embeds.
// Construction validates options, fills defaults and substitutes tokens;
// failures there are InvalidOptionsError, raised before any network I/O.
type Base struct {
	// Options is the resolved option mapping, post validation, defaults and
	// substitution.
	Options map[string]any

	// Dry marks the rehearsal pass.
	Dry bool

	// InitTokens is this actor's copy of the inherited init context.
	InitTokens map[string]string

	// Log is scoped to this actor.
	Log zerolog.Logger

	name          string
	desc          string
	warnOnFailure bool
	timeout       time.Duration
	condition     any
	changed       bool
	events        *telemetry.EventPublisher
}

// NewBase validates cfg against spec and builds the embedded base.
//
// String option values get %VAR% substitution against the process environment
// merged with the init tokens (init tokens win). The description and a string
// condition get {VAR} substitution against the init tokens only, strictly:
// an undefined reference fails construction, not execution.
func NewBase(cfg Config, env Environment, spec options.Spec) (*Base, error) {
	log := env.Log.With().Str("actor", cfg.Actor).Logger()

	resolved, err := spec.Validate(cfg.Options, log)
	if err != nil {
		return nil, NewInvalidOptionsError(cfg.Actor, err)
	}

	initCopy := make(map[string]string, len(env.Tokens))
	for k, v := range env.Tokens {
		initCopy[k] = v
	}

	envTokens := tokens.MergeScalars(tokens.Environ(), tokens.FromStrings(initCopy))
	subOpts := tokens.Defaults()
	subOpts.Log = log
	substituted, err := tokens.SubstituteDeep(resolved, envTokens, subOpts)
	if err != nil {
		return nil, NewInvalidOptionsError(cfg.Actor, err)
	}
	resolved = substituted.(map[string]any)

	braceCtx := tokens.FromStrings(initCopy)
	desc, err := tokens.SubstituteBraces(cfg.Desc, braceCtx, true)
	if err != nil {
		return nil, NewInvalidOptionsError(cfg.Actor, err)
	}
	if desc == "" {
		desc = cfg.Actor
	}

	condition := cfg.Condition
	if s, ok := condition.(string); ok {
		resolvedCond, err := tokens.SubstituteBraces(s, braceCtx, true)
		if err != nil {
			return nil, NewInvalidOptionsError(cfg.Actor, err)
		}
		condition = resolvedCond
	}

	return &Base{
		Options:       resolved,
		Dry:           env.Dry,
		InitTokens:    initCopy,
		Log:           log.With().Str("desc", desc).Logger(),
		name:          cfg.Actor,
		desc:          desc,
		warnOnFailure: cfg.WarnOnFailure,
		timeout:       time.Duration(cfg.Timeout * float64(time.Second)),
		condition:     condition,
		events:        env.Events,
	}, nil
}

// Describe returns the resolved description.
func (b *Base) Describe() string { return b.desc }

// Name returns the actor name the base was built for.
func (b *Base) Name() string { return b.name }

// Changed reports whether any mutation ran during execution.
func (b *Base) Changed() bool { return b.changed }

// MarkChanged records that a mutation ran.
func (b *Base) MarkChanged() { b.changed = true }

// Run is the execution wrapper concrete actors delegate to from Execute:
//
//	func (a *Thing) Execute(ctx context.Context) error {
//		return a.Run(ctx, a.execute)
//	}
//
// It evaluates the condition gate, times the body, enforces the timeout
// guard, wraps unrecognized errors into the actor failure taxonomy and
// applies the warn-on-failure policy.
func (b *Base) Run(ctx context.Context, fn func(context.Context) error) error {
	if !conditionMet(b.condition) {
		b.Log.Debug().Interface("condition", b.condition).
			Msg("Condition not met, skipping")
		telemetry.ObserveActor(b.name, telemetry.StatusSkipped, 0)
		b.publish(telemetry.EventTypeActorSkipped, "info", "Condition not met")
		return nil
	}

	ctx, span := otel.Tracer("overture/actor").Start(ctx, b.name)
	span.SetAttributes(
		attribute.String("actor.desc", b.desc),
		attribute.Bool("actor.dry", b.Dry),
	)
	defer span.End()

	b.Log.Info().Bool("dry", b.Dry).Msg("Executing")
	b.publish(telemetry.EventTypeActorStarted, "info", "Execution started")
	start := time.Now()
	err := b.runGuarded(ctx, fn)
	elapsed := time.Since(start)

	if err != nil && !recognized(err) {
		err = WrapRecoverable("unexpected failure in "+b.desc, err)
	}

	status := telemetry.StatusSucceeded
	if err != nil {
		status = telemetry.StatusFailed
		telemetry.Default().ObserveError(string(Classify(err)))
	}
	telemetry.ObserveActor(b.name, status, elapsed)
	b.Log.Debug().Dur("elapsed", elapsed).Msg("Execution finished")

	if err == nil {
		b.publish(telemetry.EventTypeActorCompleted, "info", "Execution completed")
		return nil
	}
	b.publish(telemetry.EventTypeActorFailed, "error", err.Error())
	if b.warnOnFailure {
		if IsSuppressible(err) {
			b.Log.Warn().Err(err).
				Msg("Execution failed, suppressed by warn_on_failure")
			return nil
		}
		b.Log.Error().Err(err).
			Msg("Execution failed and cannot be suppressed by warn_on_failure")
	}
	return err
}

// publish records one timeline event when a publisher is wired in.
func (b *Base) publish(eventType, level, message string) {
	if b.events == nil {
		return
	}
	b.events.Publish(eventType, b.name, message, level)
}

// runGuarded applies the timeout guard around fn. A zero timeout disables the
// guard entirely. On timeout the in-flight call is cancelled through its
// context and abandoned; no compensating rollback is attempted.
func (b *Base) runGuarded(ctx context.Context, fn func(context.Context) error) error {
	if b.timeout <= 0 {
		return fn(ctx)
	}

	execCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(execCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-execCtx.Done():
		if ctx.Err() != nil {
			// Outer cancellation, not the guard.
			return WrapRecoverable(b.desc+" cancelled", ctx.Err())
		}
		return &ActorTimedOut{Actor: b.desc, Timeout: b.timeout}
	}
}
