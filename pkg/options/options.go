package options

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Kind identifies an accepted runtime kind for an option value. An option may
// accept several kinds (the Def.Kinds set).
type Kind string

const (
	// KindString accepts string values.
	KindString Kind = "string"

	// KindBool accepts boolean values.
	KindBool Kind = "bool"

	// KindInt accepts integer values.
	KindInt Kind = "int"

	// KindFloat accepts floating point values. Integers are accepted too.
	KindFloat Kind = "float"

	// KindList accepts sequences.
	KindList Kind = "list"

	// KindMap accepts nested mappings.
	KindMap Kind = "map"

	// KindAny accepts any value.
	KindAny Kind = "any"
)

// requiredSentinel marks an option with no default that must be supplied.
type requiredSentinel struct{}

func (requiredSentinel) String() string { return "<required>" }

// Required is the sentinel default for options that must always be supplied.
var Required = requiredSentinel{}

// Validator is a pluggable option value check. Validate returns the value to
// store (normally the input unchanged) or an error describing the violation.
type Validator interface {
	Validate(value any) (any, error)
}

// Def declares a single option: the kinds it accepts, its default (or
// Required), and operator-facing help text. Validator, when set, runs after
// the kind check.
type Def struct {
	Kinds     []Kind
	Default   any
	Help      string
	Validator Validator
}

// Spec maps option names to their declarations.
type Spec map[string]Def

// Check verifies the Spec itself: every non-required default must satisfy its
// own declaration. Called when an actor type is registered so a bad default
// is a fatal configuration error long before first use.
func (s Spec) Check() error {
	var result *multierror.Error
	for _, name := range s.sortedNames() {
		def := s[name]
		if _, ok := def.Default.(requiredSentinel); ok {
			continue
		}
		if def.Default == nil {
			continue
		}
		if err := def.check(name, def.Default); err != nil {
			result = multierror.Append(result, fmt.Errorf("default for %q: %w", name, err))
			continue
		}
		if def.Validator != nil {
			if _, err := def.Validator.Validate(def.Default); err != nil {
				result = multierror.Append(result, fmt.Errorf("default for %q: %w", name, err))
			}
		}
	}
	return result.ErrorOrNil()
}

// Validate resolves supplied against the Spec. Missing options take their
// defaults; missing required options, kind mismatches and validator failures
// are accumulated and returned together. Unknown keys are logged and passed
// through untouched.
func (s Spec) Validate(supplied map[string]any, log zerolog.Logger) (map[string]any, error) {
	resolved := make(map[string]any, len(s))
	var result *multierror.Error

	for _, name := range s.sortedNames() {
		def := s[name]
		value, ok := supplied[name]
		if !ok {
			if _, req := def.Default.(requiredSentinel); req {
				result = multierror.Append(result,
					fmt.Errorf("option %q is required (%s)", name, def.Help))
				continue
			}
			if def.Default != nil {
				resolved[name] = def.Default
			}
			continue
		}
		if err := def.check(name, value); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if def.Validator != nil {
			v, err := def.Validator.Validate(value)
			if err != nil {
				result = multierror.Append(result,
					fmt.Errorf("option %q: %w", name, err))
				continue
			}
			value = v
		}
		resolved[name] = value
	}

	for key := range supplied {
		if _, known := s[key]; !known {
			log.Warn().Str("option", key).Msg("Unexpected option supplied, ignoring")
			resolved[key] = supplied[key]
		}
	}

	return resolved, result.ErrorOrNil()
}

// check verifies value against the declared kinds.
func (d Def) check(name string, value any) error {
	if len(d.Kinds) == 0 {
		return nil
	}
	for _, k := range d.Kinds {
		if matchKind(value, k) {
			return nil
		}
	}
	return fmt.Errorf("option %q: value %v (%T) does not match accepted kinds %v",
		name, value, value, d.Kinds)
}

func (s Spec) sortedNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// matchKind reports whether value is acceptable for kind. Numeric kinds are
// permissive across Go's decoded representations: YAML and JSON decoding
// produce int, int64 or float64 depending on the source text.
func matchKind(value any, kind Kind) bool {
	switch kind {
	case KindAny:
		return true
	case KindString:
		_, ok := value.(string)
		return ok
	case KindBool:
		_, ok := value.(bool)
		return ok
	case KindInt:
		switch value.(type) {
		case int, int32, int64:
			return true
		}
		return false
	case KindFloat:
		switch value.(type) {
		case float32, float64, int, int32, int64:
			return true
		}
		return false
	case KindList:
		switch value.(type) {
		case []any, []string:
			return true
		}
		return false
	case KindMap:
		switch value.(type) {
		case map[string]any, map[any]any:
			return true
		}
		return false
	default:
		return false
	}
}

// Float coerces a resolved numeric option into a float64. Kind checking has
// already run, so a non-numeric value reports zero.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// String coerces a resolved option into a string, returning "" for non-string
// values.
func String(v any) string {
	s, _ := v.(string)
	return s
}
