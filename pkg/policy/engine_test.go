package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/overture-run/overture/pkg/actor"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(zerolog.Nop())
	if err != nil {
		t.Fatalf("Expected engine to build with builtins, got: %v", err)
	}
	return e
}

func findViolations(result *Result, policy string) []Violation {
	var out []Violation
	for _, v := range result.Violations {
		if v.Policy == policy {
			out = append(out, v)
		}
	}
	return out
}

func TestEngine_Evaluate_CleanScriptAllowed(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Evaluate(context.Background(), []actor.Config{
		{Actor: "misc.Sleep", Desc: "pause between phases", Timeout: 30},
	})
	if err != nil {
		t.Fatalf("Expected evaluation to succeed, got: %v", err)
	}
	if !result.Allowed {
		t.Errorf("Expected clean script to be allowed, got violations: %v", result.Violations)
	}
}

func TestEngine_Evaluate_BadActorNameDenied(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Evaluate(context.Background(), []actor.Config{
		{Actor: "Not A Valid Name", Desc: "broken"},
	})
	if err != nil {
		t.Fatalf("Expected evaluation to succeed, got: %v", err)
	}
	if result.Allowed {
		t.Error("Expected malformed actor name to deny the run")
	}
	found := findViolations(result, "actor-naming")
	if len(found) != 1 {
		t.Fatalf("Expected one naming violation, got %v", result.Violations)
	}
	if found[0].Severity != SeverityError {
		t.Errorf("Expected error severity, got %s", found[0].Severity)
	}
}

func TestEngine_Evaluate_TimeoutCapDenied(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Evaluate(context.Background(), []actor.Config{
		{Actor: "misc.Sleep", Desc: "wait a week", Timeout: 604800},
	})
	if err != nil {
		t.Fatalf("Expected evaluation to succeed, got: %v", err)
	}
	if result.Allowed {
		t.Error("Expected oversized timeout to deny the run")
	}
	if len(findViolations(result, "timeout-cap")) != 1 {
		t.Fatalf("Expected one timeout violation, got %v", result.Violations)
	}
}

func TestEngine_Evaluate_MissingDescIsAdvisory(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Evaluate(context.Background(), []actor.Config{
		{Actor: "misc.Sleep", Timeout: 5},
	})
	if err != nil {
		t.Fatalf("Expected evaluation to succeed, got: %v", err)
	}
	if !result.Allowed {
		t.Errorf("Expected warning-only findings to keep the run allowed, got: %v", result.Violations)
	}
	found := findViolations(result, "require-desc")
	if len(found) != 1 || found[0].Severity != SeverityWarning {
		t.Fatalf("Expected one warning finding, got %v", result.Violations)
	}
}

func TestEngine_Evaluate_NestedActsFlattened(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Evaluate(context.Background(), []actor.Config{
		{
			Actor: "group.Sync",
			Desc:  "deploy",
			Options: map[string]any{
				"acts": []any{
					map[string]any{"actor": "Bad Name Inside", "desc": "nested"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("Expected evaluation to succeed, got: %v", err)
	}
	if result.Allowed {
		t.Error("Expected nested violation to deny the run")
	}
}

func TestEngine_AddPolicy_RejectsBrokenModule(t *testing.T) {
	e := newTestEngine(t)
	err := e.AddPolicy(&Policy{
		Name:     "broken",
		Severity: SeverityError,
		Enabled:  true,
		Rego:     "package overture.policies.broken\n\nthis is not rego\n",
	})
	if err == nil {
		t.Fatal("Expected broken module to be rejected at load time")
	}
}

func TestEngine_AddPolicy_CustomRuleEvaluated(t *testing.T) {
	e := newTestEngine(t)
	err := e.AddPolicy(&Policy{
		Name:     "no-async",
		Severity: SeverityError,
		Enabled:  true,
		Rego: `package overture.policies.noasync

import rego.v1

deny contains violation if {
	input.actor == "group.Async"
	violation := {"message": "concurrent groups are not allowed here", "severity": "error"}
}
`,
	})
	if err != nil {
		t.Fatalf("Expected custom policy to load, got: %v", err)
	}

	result, err := e.Evaluate(context.Background(), []actor.Config{
		{Actor: "group.Async", Desc: "parallel uploads"},
	})
	if err != nil {
		t.Fatalf("Expected evaluation to succeed, got: %v", err)
	}
	if result.Allowed {
		t.Error("Expected custom denial to block the run")
	}
	if len(findViolations(result, "no-async")) != 1 {
		t.Fatalf("Expected the custom finding, got %v", result.Violations)
	}
}

func TestEngine_Evaluate_DisabledPolicySkipped(t *testing.T) {
	e := newTestEngine(t)
	err := e.AddPolicy(&Policy{
		Name:     "deny-everything",
		Severity: SeverityError,
		Enabled:  false,
		Rego: `package overture.policies.denyall

import rego.v1

deny contains violation if {
	violation := {"message": "nothing may run", "severity": "error"}
}
`,
	})
	if err != nil {
		t.Fatalf("Expected policy to load, got: %v", err)
	}
	result, err := e.Evaluate(context.Background(), []actor.Config{
		{Actor: "misc.Sleep", Desc: "pause", Timeout: 1},
	})
	if err != nil {
		t.Fatalf("Expected evaluation to succeed, got: %v", err)
	}
	if !result.Allowed {
		t.Errorf("Expected disabled policy to have no effect, got: %v", result.Violations)
	}
}

func TestFlatten_Depths(t *testing.T) {
	nodes := Flatten([]actor.Config{
		{
			Actor: "group.Sync",
			Options: map[string]any{
				"acts": []any{
					map[string]any{"actor": "misc.Sleep"},
					map[string]any{
						"actor": "group.Async",
						"options": map[string]any{
							"acts": []any{
								map[string]any{"actor": "misc.Sleep"},
							},
						},
					},
				},
			},
		},
	})
	if len(nodes) != 4 {
		t.Fatalf("Expected four flattened nodes, got %d: %v", len(nodes), nodes)
	}
	wantDepths := []int{0, 1, 1, 2}
	for i, want := range wantDepths {
		if nodes[i].Depth != want {
			t.Errorf("Expected depth %d at position %d, got %d", want, i, nodes[i].Depth)
		}
	}
}

func TestEngine_LoadDir(t *testing.T) {
	dir := t.TempDir()
	rego := `package overture.policies.nosleep

import rego.v1

deny contains violation if {
	input.actor == "misc.Sleep"
	violation := {"message": "sleeping is forbidden here", "severity": "error"}
}
`
	if err := os.WriteFile(filepath.Join(dir, "no-sleep.rego"), []byte(rego), 0o644); err != nil {
		t.Fatalf("Expected policy fixture to write, got: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("Expected fixture to write, got: %v", err)
	}

	e := newTestEngine(t)
	if err := e.LoadDir(dir); err != nil {
		t.Fatalf("Expected directory load to succeed, got: %v", err)
	}

	result, err := e.Evaluate(context.Background(), []actor.Config{
		{Actor: "misc.Sleep", Desc: "pause"},
	})
	if err != nil {
		t.Fatalf("Expected evaluation to succeed, got: %v", err)
	}
	if result.Allowed {
		t.Error("Expected the loaded policy to deny the run")
	}
	if len(findViolations(result, "no-sleep")) != 1 {
		t.Fatalf("Expected the loaded finding, got %v", result.Violations)
	}
}

func TestEngine_LoadDir_MissingDirectory(t *testing.T) {
	e := newTestEngine(t)
	if err := e.LoadDir(filepath.Join(t.TempDir(), "nowhere")); err == nil {
		t.Error("Expected missing directory to fail")
	}
}
