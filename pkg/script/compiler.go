package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/overture-run/overture/pkg/actor"
	"github.com/overture-run/overture/pkg/tokens"
)

// validate is shared across compiles; validator.Validate is safe for
// concurrent use.
var validate = validator.New()

// Compiler turns script sources into actor configs.
type Compiler struct {
	log zerolog.Logger
}

// NewCompiler creates a compiler.
func NewCompiler(log zerolog.Logger) *Compiler {
	return &Compiler{log: log}
}

// Compile reads, substitutes, parses and validates a script source. The
// token map is merged over the process environment (explicit tokens win) and
// applied to the raw text before structural parsing; an unresolved %TOKEN%
// reference fails the compile. A script document may be a single actor node
// or a list of nodes; a list compiles to multiple configs, which Root wraps
// into an implicit sequential group.
func (c *Compiler) Compile(ctx context.Context, source string, tok map[string]string) ([]actor.Config, error) {
	var doc any

	if strings.HasSuffix(source, ".star") {
		value, err := c.evalStarlark(ctx, source, tok)
		if err != nil {
			return nil, err
		}
		doc = value
	} else {
		text, err := load(ctx, source)
		if err != nil {
			return nil, err
		}
		text = stripBlockComments(text)

		subOpts := tokens.Defaults()
		subOpts.Log = c.log
		merged := tokens.MergeScalars(tokens.Environ(), tokens.FromStrings(tok))
		text, err = tokens.Substitute(text, merged, subOpts)
		if err != nil {
			return nil, &actor.InvalidScriptError{Source: source, Diag: err}
		}

		if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
			return nil, &actor.InvalidScriptError{Source: source, Diag: err}
		}
	}

	nodes, err := normalizeDocument(doc)
	if err != nil {
		return nil, &actor.InvalidScriptError{Source: source, Diag: err}
	}

	cfgs := make([]actor.Config, 0, len(nodes))
	for i, node := range nodes {
		cfg, err := c.compileNode(node)
		if err != nil {
			return nil, &actor.InvalidScriptError{
				Source: source,
				Diag:   fmt.Errorf("node %d: %w", i, err),
			}
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

// compileNode validates one node mapping and its nested acts, and resolves
// the actor name against the registry so an unknown actor fails at compile
// time, before anything executes.
func (c *Compiler) compileNode(node map[string]any) (actor.Config, error) {
	if err := validateNodeShape(node); err != nil {
		return actor.Config{}, err
	}

	raw, err := yaml.Marshal(node)
	if err != nil {
		return actor.Config{}, err
	}
	var cfg actor.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return actor.Config{}, err
	}
	if err := validate.Struct(cfg); err != nil {
		return actor.Config{}, err
	}

	if _, err := actor.Lookup(cfg.Actor); err != nil {
		return actor.Config{}, err
	}

	if acts, ok := nestedActs(cfg.Options); ok {
		for i, childNode := range acts {
			if _, err := c.compileNode(childNode); err != nil {
				return actor.Config{}, fmt.Errorf("acts[%d]: %w", i, err)
			}
		}
	}
	return cfg, nil
}

// Root wraps compiled configs into a single runnable node: a one-node script
// runs as-is, a list becomes an implicit sequential group.
func Root(cfgs []actor.Config) actor.Config {
	if len(cfgs) == 1 {
		return cfgs[0]
	}
	acts := make([]any, len(cfgs))
	for i, cfg := range cfgs {
		acts[i] = cfg
	}
	return actor.Config{
		Desc:    "script",
		Actor:   "group.Sync",
		Options: map[string]any{"acts": acts},
	}
}

// normalizeDocument accepts a single node mapping or a list of node mappings.
func normalizeDocument(doc any) ([]map[string]any, error) {
	switch v := doc.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		nodes := make([]map[string]any, 0, len(v))
		for i, elem := range v {
			node, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is not an actor node mapping", i)
			}
			nodes = append(nodes, node)
		}
		if len(nodes) == 0 {
			return nil, fmt.Errorf("script contains no actor nodes")
		}
		return nodes, nil
	default:
		return nil, fmt.Errorf("script must be an actor node or a list of actor nodes, got %T", doc)
	}
}

// nestedActs extracts the acts list from a composite node's options.
func nestedActs(opts map[string]any) ([]map[string]any, bool) {
	raw, ok := opts["acts"]
	if !ok {
		return nil, false
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	nodes := make([]map[string]any, 0, len(list))
	for _, elem := range list {
		if node, isMap := elem.(map[string]any); isMap {
			nodes = append(nodes, node)
		}
	}
	return nodes, len(nodes) == len(list)
}
