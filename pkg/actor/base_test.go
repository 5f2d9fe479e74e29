package actor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/overture-run/overture/pkg/options"
)

// testActor runs an injected body through the Base execution wrapper.
type testActor struct {
	*Base
	body func(context.Context) error
}

func (a *testActor) Execute(ctx context.Context) error {
	return a.Run(ctx, a.body)
}

func newTestActor(t *testing.T, cfg Config, env Environment, body func(context.Context) error) *testActor {
	t.Helper()
	base, err := NewBase(cfg, env, options.Spec{})
	if err != nil {
		t.Fatalf("Expected base to build, got: %v", err)
	}
	return &testActor{Base: base, body: body}
}

func nopEnv() Environment {
	return Environment{Log: zerolog.Nop()}
}

func TestBase_Run_ConditionGate(t *testing.T) {
	tests := []struct {
		name        string
		condition   any
		wantExecute bool
	}{
		{"string zero skips", "0", false},
		{"string false skips", "false", false},
		{"string FALSE skips", "FALSE", false},
		{"bool false skips", false, false},
		{"int zero skips", 0, false},
		{"string one executes", "1", true},
		{"bool true executes", true, true},
		{"unset executes", nil, true},
		{"empty string executes", "", true},
		{"arbitrary string executes", "yes", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executed := false
			a := newTestActor(t, Config{Actor: "test.Gate", Condition: tt.condition}, nopEnv(),
				func(context.Context) error {
					executed = true
					return nil
				})
			if err := a.Execute(context.Background()); err != nil {
				t.Fatalf("Expected nil result, got: %v", err)
			}
			if executed != tt.wantExecute {
				t.Errorf("Expected executed=%v, got %v", tt.wantExecute, executed)
			}
		})
	}
}

func TestBase_Run_ConditionTemplateSubstitution(t *testing.T) {
	executed := false
	env := Environment{Log: zerolog.Nop(), Tokens: map[string]string{"ENABLED": "0"}}
	a := newTestActor(t, Config{Actor: "test.Gate", Condition: "{ENABLED}"}, env,
		func(context.Context) error {
			executed = true
			return nil
		})
	if err := a.Execute(context.Background()); err != nil {
		t.Fatalf("Expected nil result, got: %v", err)
	}
	if executed {
		t.Error("Expected substituted falsy condition to skip execution")
	}
}

func TestNewBase_ConditionUnresolvedFailsFast(t *testing.T) {
	_, err := NewBase(Config{Actor: "test.Gate", Condition: "{UNDEFINED}"}, nopEnv(), options.Spec{})
	if err == nil {
		t.Fatal("Expected construction failure for unresolved condition token")
	}
	var invalid *InvalidOptionsError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidOptionsError, got %T", err)
	}
}

func TestNewBase_DescSubstitution(t *testing.T) {
	env := Environment{Log: zerolog.Nop(), Tokens: map[string]string{"ENV": "prod"}}
	base, err := NewBase(Config{Actor: "test.Desc", Desc: "deploy to {ENV}"}, env, options.Spec{})
	if err != nil {
		t.Fatalf("Expected base to build, got: %v", err)
	}
	if base.Describe() != "deploy to prod" {
		t.Errorf("Expected substituted description, got %q", base.Describe())
	}
}

func TestNewBase_DescUnresolvedFailsFast(t *testing.T) {
	_, err := NewBase(Config{Actor: "test.Desc", Desc: "deploy to {NOWHERE}"}, nopEnv(), options.Spec{})
	if err == nil {
		t.Fatal("Expected construction failure for unresolved description token")
	}
}

func TestNewBase_OptionEnvSubstitution(t *testing.T) {
	t.Setenv("OVERTURE_TEST_REGION", "eu-west-1")

	spec := options.Spec{
		"region": {Kinds: []options.Kind{options.KindString}, Default: options.Required},
	}
	cfg := Config{
		Actor:   "test.Env",
		Options: map[string]any{"region": "%OVERTURE_TEST_REGION%"},
	}
	base, err := NewBase(cfg, nopEnv(), spec)
	if err != nil {
		t.Fatalf("Expected base to build, got: %v", err)
	}
	if base.Options["region"] != "eu-west-1" {
		t.Errorf("Expected env substitution, got %v", base.Options["region"])
	}
}

func TestNewBase_ExplicitTokenWinsOverEnv(t *testing.T) {
	t.Setenv("OVERTURE_TEST_REGION", "eu-west-1")

	spec := options.Spec{
		"region": {Kinds: []options.Kind{options.KindString}, Default: options.Required},
	}
	cfg := Config{
		Actor:   "test.Env",
		Options: map[string]any{"region": "%OVERTURE_TEST_REGION%"},
	}
	env := Environment{Log: zerolog.Nop(), Tokens: map[string]string{"OVERTURE_TEST_REGION": "us-east-2"}}
	base, err := NewBase(cfg, env, spec)
	if err != nil {
		t.Fatalf("Expected base to build, got: %v", err)
	}
	if base.Options["region"] != "us-east-2" {
		t.Errorf("Expected explicit token to win, got %v", base.Options["region"])
	}
}

func TestNewBase_UnresolvedOptionTokenFailsFast(t *testing.T) {
	spec := options.Spec{
		"region": {Kinds: []options.Kind{options.KindString}, Default: options.Required},
	}
	cfg := Config{
		Actor:   "test.Env",
		Options: map[string]any{"region": "%OVERTURE_TEST_NOT_SET%"},
	}
	_, err := NewBase(cfg, nopEnv(), spec)
	if err == nil {
		t.Fatal("Expected construction failure for unresolved option token")
	}
	var invalid *InvalidOptionsError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidOptionsError, got %T", err)
	}
}

func TestBase_Run_WarnOnFailureSuppressesRecoverable(t *testing.T) {
	a := newTestActor(t, Config{Actor: "test.Warn", WarnOnFailure: true}, nopEnv(),
		func(context.Context) error {
			return NewRecoverable("vendor said no")
		})
	if err := a.Execute(context.Background()); err != nil {
		t.Fatalf("Expected suppressed failure, got: %v", err)
	}
}

func TestBase_Run_WarnOnFailureDoesNotSuppressUnrecoverable(t *testing.T) {
	a := newTestActor(t, Config{Actor: "test.Warn", WarnOnFailure: true}, nopEnv(),
		func(context.Context) error {
			return NewUnrecoverable("corrupted remote state")
		})
	err := a.Execute(context.Background())
	if err == nil {
		t.Fatal("Expected unrecoverable failure to propagate")
	}
	var unrec *UnrecoverableActorFailure
	if !errors.As(err, &unrec) {
		t.Fatalf("Expected UnrecoverableActorFailure, got %T", err)
	}
}

func TestBase_Run_FailurePropagatesWithoutWarn(t *testing.T) {
	a := newTestActor(t, Config{Actor: "test.Fail"}, nopEnv(),
		func(context.Context) error {
			return NewRecoverable("vendor said no")
		})
	if err := a.Execute(context.Background()); err == nil {
		t.Fatal("Expected failure to propagate without warn_on_failure")
	}
}

func TestBase_Run_WrapsUnrecognizedErrors(t *testing.T) {
	internal := fmt.Errorf("dial tcp: connection refused")
	a := newTestActor(t, Config{Actor: "test.Wrap"}, nopEnv(),
		func(context.Context) error {
			return internal
		})
	err := a.Execute(context.Background())
	if err == nil {
		t.Fatal("Expected failure")
	}
	var rec *RecoverableActorFailure
	if !errors.As(err, &rec) {
		t.Fatalf("Expected bare error wrapped into RecoverableActorFailure, got %T", err)
	}
	if !errors.Is(err, internal) {
		t.Error("Expected wrapped error to keep the cause in its chain")
	}
}

func TestBase_Run_TimeoutGuard(t *testing.T) {
	a := newTestActor(t, Config{Actor: "test.Slow", Timeout: 0.05}, nopEnv(),
		func(ctx context.Context) error {
			select {
			case <-time.After(5 * time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	start := time.Now()
	err := a.Execute(context.Background())
	if err == nil {
		t.Fatal("Expected timeout failure")
	}
	var timedOut *ActorTimedOut
	if !errors.As(err, &timedOut) {
		t.Fatalf("Expected ActorTimedOut, got %T: %v", err, err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected guard to fire promptly, took %s", elapsed)
	}
}

func TestBase_Run_ZeroTimeoutDisablesGuard(t *testing.T) {
	a := newTestActor(t, Config{Actor: "test.Fast", Timeout: 0}, nopEnv(),
		func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			return nil
		})
	if err := a.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error with timeout disabled, got: %v", err)
	}
}

func TestBase_Run_TimeoutSuppressibleByWarn(t *testing.T) {
	a := newTestActor(t, Config{Actor: "test.Slow", Timeout: 0.01, WarnOnFailure: true}, nopEnv(),
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
	if err := a.Execute(context.Background()); err != nil {
		t.Fatalf("Expected timeout to be suppressed by warn_on_failure, got: %v", err)
	}
}
