package actor

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/overture-run/overture/pkg/options"
)

// Factory builds an actor instance from its config and run environment.
type Factory func(cfg Config, env Environment) (Actor, error)

// registration couples a factory with its declared option spec.
type registration struct {
	factory Factory
	spec    options.Spec
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]registration)
)

// namespacePrefix is the fixed prefix tried last during name resolution, so
// scripts written against the fully qualified actor namespace keep working.
const namespacePrefix = "overture.actors."

// defaultNamespace is tried for bare, dotless actor names.
const defaultNamespace = "misc."

// MustRegister registers an actor factory under its dotted name. The spec's
// defaults are checked eagerly: a default that fails its own declaration is a
// programming error in the actor type, surfaced at registration, not at first
// use. Duplicate names are also programming errors.
func MustRegister(name string, spec options.Spec, factory Factory) {
	if err := spec.Check(); err != nil {
		panic(fmt.Sprintf("actor %s declares invalid option defaults: %v", name, err))
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("actor %s registered twice", name))
	}
	registry[name] = registration{factory: factory, spec: spec}
}

// Lookup resolves an actor name to its factory. Resolution tries, in order:
// the exact dotted name, the default namespace for bare names, and the fixed
// namespace prefix stripped. The first hit wins.
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	candidates := []string{name}
	if !strings.Contains(name, ".") {
		candidates = append(candidates, defaultNamespace+name)
	}
	if strings.HasPrefix(name, namespacePrefix) {
		candidates = append(candidates, strings.TrimPrefix(name, namespacePrefix))
	}

	for _, candidate := range candidates {
		if reg, ok := registry[candidate]; ok {
			return reg.factory, nil
		}
	}
	return nil, &InvalidActorError{Name: name}
}

// Spec returns the registered option spec for an actor name, resolving the
// name the same way Lookup does.
func Spec(name string) (options.Spec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[name]; ok {
		return reg.spec, nil
	}
	if !strings.Contains(name, ".") {
		if reg, ok := registry[defaultNamespace+name]; ok {
			return reg.spec, nil
		}
	}
	if trimmed := strings.TrimPrefix(name, namespacePrefix); trimmed != name {
		if reg, ok := registry[trimmed]; ok {
			return reg.spec, nil
		}
	}
	return nil, &InvalidActorError{Name: name}
}

// Registered returns the sorted names of all registered actors.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds an actor from its config. The factory resolved for cfg.Actor
// receives env as-is; the build is debug-logged with secret-shaped token
// values redacted.
func New(cfg Config, env Environment) (Actor, error) {
	factory, err := Lookup(cfg.Actor)
	if err != nil {
		return nil, err
	}

	env.Log.Debug().
		Str("actor", cfg.Actor).
		Str("desc", cfg.Desc).
		Bool("dry", env.Dry).
		Interface("tokens", redactTokens(env.Tokens)).
		Msg("Building actor")

	return factory(cfg, env)
}

// redactTokens masks token values whose names look like credentials.
func redactTokens(tokens map[string]string) map[string]string {
	out := make(map[string]string, len(tokens))
	for k, v := range tokens {
		lower := strings.ToLower(k)
		if strings.Contains(lower, "secret") ||
			strings.Contains(lower, "password") ||
			strings.Contains(lower, "token") ||
			strings.Contains(lower, "key") {
			out[k] = "<redacted>"
			continue
		}
		out[k] = v
	}
	return out
}
