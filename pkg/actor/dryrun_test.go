package actor

import (
	"context"
	"errors"
	"testing"

	"github.com/overture-run/overture/pkg/options"
)

func TestBase_Mutate_DrySkipsBody(t *testing.T) {
	base, err := NewBase(Config{Actor: "test.Mutate"}, Environment{Dry: true, Log: nopEnv().Log}, options.Spec{})
	if err != nil {
		t.Fatalf("Expected base to build, got: %v", err)
	}

	called := false
	err = base.Mutate(context.Background(), "Would delete bucket %s", []any{"payroll"},
		func(context.Context) error {
			called = true
			return nil
		})
	if err != nil {
		t.Fatalf("Expected nil result in dry mode, got: %v", err)
	}
	if called {
		t.Error("Expected body to be skipped in dry mode")
	}
}

func TestBase_Mutate_WetRunsBody(t *testing.T) {
	base, err := NewBase(Config{Actor: "test.Mutate"}, nopEnv(), options.Spec{})
	if err != nil {
		t.Fatalf("Expected base to build, got: %v", err)
	}

	called := false
	if err := base.Mutate(context.Background(), "Would delete bucket %s", []any{"payroll"},
		func(context.Context) error {
			called = true
			return nil
		}); err != nil {
		t.Fatalf("Expected nil result, got: %v", err)
	}
	if !called {
		t.Error("Expected body to run outside dry mode")
	}
}

func TestBase_Mutate_WetPropagatesBodyError(t *testing.T) {
	base, err := NewBase(Config{Actor: "test.Mutate"}, nopEnv(), options.Spec{})
	if err != nil {
		t.Fatalf("Expected base to build, got: %v", err)
	}

	boom := NewRecoverable("bucket is locked")
	got := base.Mutate(context.Background(), "Would delete bucket %s", []any{"payroll"},
		func(context.Context) error { return boom })
	if !errors.Is(got, boom) {
		t.Fatalf("Expected body error to propagate, got: %v", got)
	}
}

func TestBase_Mutate_TemplateMismatchFailsInAnyMode(t *testing.T) {
	for _, dry := range []bool{true, false} {
		base, err := NewBase(Config{Actor: "test.Mutate"}, Environment{Dry: dry, Log: nopEnv().Log}, options.Spec{})
		if err != nil {
			t.Fatalf("Expected base to build, got: %v", err)
		}

		called := false
		got := base.Mutate(context.Background(), "Would delete bucket %s and %s", []any{"payroll"},
			func(context.Context) error {
				called = true
				return nil
			})
		if got == nil {
			t.Fatalf("Expected mismatch failure with dry=%v", dry)
		}
		var unrec *UnrecoverableActorFailure
		if !errors.As(got, &unrec) {
			t.Fatalf("Expected UnrecoverableActorFailure with dry=%v, got %T", dry, got)
		}
		if called {
			t.Errorf("Expected body never to run on template mismatch (dry=%v)", dry)
		}
	}
}
