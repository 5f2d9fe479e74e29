package actor

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"options", NewInvalidOptionsError("misc.Sleep", errors.New("bad")), FailureKindOptions},
		{"script", &InvalidScriptError{Source: "deploy.json", Diag: errors.New("bad")}, FailureKindScript},
		{"actor", &InvalidActorError{Name: "misc.Nope"}, FailureKindActor},
		{"unrecoverable", NewUnrecoverable("broken"), FailureKindUnrecoverable},
		{"timeout", &ActorTimedOut{Actor: "slow"}, FailureKindTimeout},
		{"recoverable", NewRecoverable("retry"), FailureKindRecoverable},
		{"bare error defaults to recoverable", errors.New("dial tcp"), FailureKindRecoverable},
		{"wrapped classifies through the chain", fmt.Errorf("outer: %w", NewUnrecoverable("inner")), FailureKindUnrecoverable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestIsSuppressible(t *testing.T) {
	if !IsSuppressible(NewRecoverable("retry")) {
		t.Error("Expected recoverable failures to be suppressible")
	}
	if !IsSuppressible(&ActorTimedOut{Actor: "slow"}) {
		t.Error("Expected timeouts to be suppressible")
	}
	if IsSuppressible(NewUnrecoverable("broken")) {
		t.Error("Expected unrecoverable failures not to be suppressible")
	}
	if IsSuppressible(NewInvalidOptionsError("misc.Sleep", errors.New("bad"))) {
		t.Error("Expected option errors not to be suppressible")
	}
}

func TestWrapRecoverable_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := WrapRecoverable("upload failed", cause)
	if !errors.Is(wrapped, cause) {
		t.Error("Expected the cause to stay in the error chain")
	}
}
