package actor

import (
	"errors"
	"fmt"
	"time"
)

// FailureKind classifies an actor failure for warn-on-failure and exit-code
// handling.
type FailureKind string

const (
	// FailureKindOptions indicates a static configuration problem detected at
	// construction time. Never retried, never suppressed.
	FailureKindOptions FailureKind = "invalid_options"

	// FailureKindScript indicates a script document failed parsing or schema
	// validation.
	FailureKindScript FailureKind = "invalid_script"

	// FailureKindActor indicates an actor name did not resolve to a
	// registered actor implementation.
	FailureKindActor FailureKind = "invalid_actor"

	// FailureKindRecoverable indicates a condition the operator can inspect
	// and rerun. Honors warn_on_failure.
	FailureKindRecoverable FailureKind = "recoverable"

	// FailureKindUnrecoverable indicates a condition that must never be
	// silently suppressed, even under warn_on_failure.
	FailureKindUnrecoverable FailureKind = "unrecoverable"

	// FailureKindTimeout indicates the per-actor timeout guard fired.
	FailureKindTimeout FailureKind = "timed_out"
)

// InvalidOptionsError reports one or more static configuration problems with
// an actor's supplied options. All violations found are accumulated before
// the error is raised.
type InvalidOptionsError struct {
	// Actor is the actor name or description the options belong to.
	Actor string

	// Err holds the accumulated violations.
	Err error
}

func (e *InvalidOptionsError) Error() string {
	if e.Actor != "" {
		return fmt.Sprintf("invalid options for %s: %v", e.Actor, e.Err)
	}
	return fmt.Sprintf("invalid options: %v", e.Err)
}

func (e *InvalidOptionsError) Unwrap() error { return e.Err }

// NewInvalidOptionsError wraps the accumulated violations for an actor.
func NewInvalidOptionsError(actor string, err error) *InvalidOptionsError {
	return &InvalidOptionsError{Actor: actor, Err: err}
}

// InvalidScriptError reports a script document that failed comment/token
// parsing or schema validation. Diag carries the underlying validator
// diagnostic verbatim.
type InvalidScriptError struct {
	Source string
	Diag   error
}

func (e *InvalidScriptError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("invalid script %s: %v", e.Source, e.Diag)
	}
	return fmt.Sprintf("invalid script: %v", e.Diag)
}

func (e *InvalidScriptError) Unwrap() error { return e.Diag }

// InvalidActorError reports an actor name that did not resolve to any
// registered actor.
type InvalidActorError struct {
	Name string
}

func (e *InvalidActorError) Error() string {
	return fmt.Sprintf("unknown actor %q", e.Name)
}

// RecoverableActorFailure is an execution failure the operator can reasonably
// inspect and rerun. It is the only failure kind that warn_on_failure
// converts into a logged warning.
type RecoverableActorFailure struct {
	Message string
	Err     error
}

func (e *RecoverableActorFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RecoverableActorFailure) Unwrap() error { return e.Err }

// NewRecoverable creates a recoverable actor failure.
func NewRecoverable(format string, args ...any) *RecoverableActorFailure {
	return &RecoverableActorFailure{Message: fmt.Sprintf(format, args...)}
}

// WrapRecoverable wraps an underlying error as a recoverable failure.
func WrapRecoverable(message string, err error) *RecoverableActorFailure {
	return &RecoverableActorFailure{Message: message, Err: err}
}

// UnrecoverableActorFailure is an execution failure that must propagate even
// when warn_on_failure is set.
type UnrecoverableActorFailure struct {
	Message string
	Err     error
}

func (e *UnrecoverableActorFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UnrecoverableActorFailure) Unwrap() error { return e.Err }

// NewUnrecoverable creates an unrecoverable actor failure.
func NewUnrecoverable(format string, args ...any) *UnrecoverableActorFailure {
	return &UnrecoverableActorFailure{Message: fmt.Sprintf(format, args...)}
}

// ActorTimedOut reports that an actor's timeout guard fired before its
// execution completed. It is treated as recoverable for warn-on-failure
// purposes: rerunning with a longer timeout is a reasonable operator action.
type ActorTimedOut struct {
	Actor   string
	Timeout time.Duration
}

func (e *ActorTimedOut) Error() string {
	return fmt.Sprintf("actor %s timed out after %s", e.Actor, e.Timeout)
}

// Classify returns the failure kind for an error surfaced by Execute.
func Classify(err error) FailureKind {
	var (
		opts    *InvalidOptionsError
		script  *InvalidScriptError
		unknown *InvalidActorError
		unrec   *UnrecoverableActorFailure
		timeout *ActorTimedOut
	)
	switch {
	case errors.As(err, &opts):
		return FailureKindOptions
	case errors.As(err, &script):
		return FailureKindScript
	case errors.As(err, &unknown):
		return FailureKindActor
	case errors.As(err, &unrec):
		return FailureKindUnrecoverable
	case errors.As(err, &timeout):
		return FailureKindTimeout
	default:
		return FailureKindRecoverable
	}
}

// IsSuppressible reports whether warn_on_failure may convert the error into
// a logged warning. Static configuration errors and unrecoverable failures
// always propagate.
func IsSuppressible(err error) bool {
	switch Classify(err) {
	case FailureKindRecoverable, FailureKindTimeout:
		return true
	default:
		return false
	}
}

// recognized reports whether the error already belongs to the actor failure
// taxonomy. Unrecognized errors are wrapped before leaving Execute so callers
// never see a bare implementation-internal error type.
func recognized(err error) bool {
	var (
		opts    *InvalidOptionsError
		script  *InvalidScriptError
		unknown *InvalidActorError
		rec     *RecoverableActorFailure
		unrec   *UnrecoverableActorFailure
		timeout *ActorTimedOut
	)
	return errors.As(err, &opts) ||
		errors.As(err, &script) ||
		errors.As(err, &unknown) ||
		errors.As(err, &rec) ||
		errors.As(err, &unrec) ||
		errors.As(err, &timeout)
}
