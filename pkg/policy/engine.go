package policy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/open-policy-agent/opa/rego"
	"github.com/rs/zerolog"

	"github.com/overture-run/overture/pkg/actor"
)

// Engine evaluates Rego policies against compiled actor trees.
type Engine struct {
	mu       sync.RWMutex
	policies map[string]*Policy
	logger   zerolog.Logger
}

// NewEngine creates an engine preloaded with the built-in policies.
func NewEngine(logger zerolog.Logger) (*Engine, error) {
	e := &Engine{
		policies: make(map[string]*Policy),
		logger:   logger.With().Str("component", "policy-engine").Logger(),
	}
	for _, p := range BuiltinPolicies() {
		policy := p
		if err := e.AddPolicy(&policy); err != nil {
			return nil, fmt.Errorf("failed to load built-in policy %s: %w", p.Name, err)
		}
	}
	return e, nil
}

// AddPolicy registers a policy after a compile check, so a broken module is
// reported at load time rather than mid-evaluation.
func (e *Engine) AddPolicy(p *Policy) error {
	if _, err := rego.New(
		rego.Module(p.Name, p.Rego),
		rego.Query(denyQuery(p.Rego)),
	).PrepareForEval(context.Background()); err != nil {
		return fmt.Errorf("policy %s does not compile: %w", p.Name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.policies[p.Name] = p
	return nil
}

// Policies returns the names of every loaded policy.
func (e *Engine) Policies() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.policies))
	for name := range e.policies {
		names = append(names, name)
	}
	return names
}

// Evaluate runs every enabled policy against the flattened actor tree. A
// policy that fails to evaluate is reported as a warning finding, not a
// denial; denials come only from explicit deny rules.
func (e *Engine) Evaluate(ctx context.Context, cfgs []actor.Config) (*Result, error) {
	nodes := Flatten(cfgs)

	e.mu.RLock()
	defer e.mu.RUnlock()

	var violations []Violation
	for _, p := range e.policies {
		if !p.Enabled {
			continue
		}
		for i := range nodes {
			found, err := e.evaluatePolicy(ctx, p, &nodes[i])
			if err != nil {
				e.logger.Error().Err(err).
					Str("policy", p.Name).
					Str("actor", nodes[i].Actor).
					Msg("Policy evaluation failed")
				violations = append(violations, Violation{
					Policy:   p.Name,
					Actor:    nodes[i].Actor,
					Message:  fmt.Sprintf("policy evaluation failed: %v", err),
					Severity: SeverityWarning,
				})
				continue
			}
			violations = append(violations, found...)
		}
	}

	allowed := true
	for _, v := range violations {
		if v.Severity == SeverityError {
			allowed = false
			break
		}
	}

	e.logger.Debug().
		Int("nodes", len(nodes)).
		Int("violations", len(violations)).
		Bool("allowed", allowed).
		Msg("Policy evaluation completed")

	return &Result{
		Allowed:     allowed,
		Violations:  violations,
		EvaluatedAt: time.Now(),
	}, nil
}

// evaluatePolicy runs one policy against one node.
func (e *Engine) evaluatePolicy(ctx context.Context, p *Policy, node *Node) ([]Violation, error) {
	r := rego.New(
		rego.Module(p.Name, p.Rego),
		rego.Query(denyQuery(p.Rego)),
		rego.Input(node),
	)
	results, err := r.Eval(ctx)
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for _, result := range results {
		for _, expr := range result.Expressions {
			denySet, ok := expr.Value.([]any)
			if !ok {
				continue
			}
			for _, d := range denySet {
				violations = append(violations, e.toViolation(p, node, d))
			}
		}
	}
	return violations, nil
}

// toViolation maps one deny result into a Violation, letting the rule
// override message and severity.
func (e *Engine) toViolation(p *Policy, node *Node, result any) Violation {
	v := Violation{
		Policy:   p.Name,
		Actor:    node.Actor,
		Severity: p.Severity,
	}
	switch t := result.(type) {
	case string:
		v.Message = t
	case map[string]any:
		if msg, ok := t["message"].(string); ok {
			v.Message = msg
		}
		if sev, ok := t["severity"].(string); ok {
			v.Severity = Severity(sev)
		}
	default:
		v.Message = fmt.Sprintf("%v", result)
	}
	return v
}

// Flatten walks the actor tree depth-first, emitting one input node per
// actor, nested acts included.
func Flatten(cfgs []actor.Config) []Node {
	var nodes []Node
	var walk func(cfg actor.Config, depth int)
	walk = func(cfg actor.Config, depth int) {
		nodes = append(nodes, Node{
			Actor:         cfg.Actor,
			Desc:          cfg.Desc,
			Timeout:       cfg.Timeout,
			WarnOnFailure: cfg.WarnOnFailure,
			Depth:         depth,
		})
		if children, err := actor.ConfigsFromAny(cfg.Options["acts"]); err == nil {
			for _, child := range children {
				walk(child, depth+1)
			}
		}
	}
	for _, cfg := range cfgs {
		walk(cfg, 0)
	}
	return nodes
}

// denyQuery builds the data query for a module's deny collection.
func denyQuery(module string) string {
	return fmt.Sprintf("data.%s.deny", packageName(module))
}

// packageName extracts the package path from Rego source.
func packageName(module string) string {
	for _, line := range strings.Split(module, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "package ") {
			if parts := strings.Fields(trimmed); len(parts) >= 2 {
				return parts[1]
			}
		}
	}
	return "overture.policies"
}
