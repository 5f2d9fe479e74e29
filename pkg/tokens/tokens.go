package tokens

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// UnresolvedError reports token references left in the text after strict
// substitution. Names lists every unresolved token, sorted.
type UnresolvedError struct {
	Names []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved tokens: %s", strings.Join(e.Names, ", "))
}

// Options controls a substitution pass.
type Options struct {
	// LeftDelim and RightDelim bracket token names. Both default to "%".
	LeftDelim  string
	RightDelim string

	// Strict causes substitution to fail when any token reference remains
	// after all replacements.
	Strict bool

	// Log receives warnings for skipped non-scalar token values.
	Log zerolog.Logger
}

// Defaults returns the standard percent-delimited strict options.
func Defaults() Options {
	return Options{LeftDelim: "%", RightDelim: "%", Strict: true, Log: zerolog.Nop()}
}

// Substitute replaces every %KEY% occurrence in text with the scalar value of
// tokens[KEY]. Non-scalar token values are skipped with a warning. In strict
// mode, any remaining token reference is an error naming every unresolved
// token.
func Substitute(text string, tokens map[string]any, opts Options) (string, error) {
	if opts.LeftDelim == "" {
		opts.LeftDelim = "%"
	}
	if opts.RightDelim == "" {
		opts.RightDelim = "%"
	}

	for _, key := range sortedKeys(tokens) {
		rendered, ok := renderScalar(tokens[key])
		if !ok {
			opts.Log.Warn().Str("token", key).
				Msgf("Token value is not a scalar (%T), skipping substitution", tokens[key])
			continue
		}
		text = strings.ReplaceAll(text, opts.LeftDelim+key+opts.RightDelim, rendered)
	}

	if opts.Strict {
		if remaining := findRemaining(text, opts.LeftDelim, opts.RightDelim); len(remaining) > 0 {
			return text, &UnresolvedError{Names: remaining}
		}
	}
	return text, nil
}

// SubstituteDeep applies Substitute to every string leaf of a nested value
// built from maps and slices. Non-string leaves pass through unchanged.
func SubstituteDeep(value any, tokens map[string]any, opts Options) (any, error) {
	switch v := value.(type) {
	case string:
		return Substitute(v, tokens, opts)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, elem := range v {
			sub, err := SubstituteDeep(elem, tokens, opts)
			if err != nil {
				return nil, fmt.Errorf("in %q: %w", key, err)
			}
			out[key] = sub
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			sub, err := SubstituteDeep(elem, tokens, opts)
			if err != nil {
				return nil, err
			}
			out[i] = sub
		}
		return out, nil
	default:
		return value, nil
	}
}

const (
	escapedLeft  = "\x00"
	escapedRight = "\x01"
)

var braceRef = regexp.MustCompile(`\{(\w+)\}`)

// SubstituteBraces replaces every {KEY} reference in a description or
// condition template with the scalar value of ctx[KEY]. The escape forms \{
// and \} survive substitution as literal braces with the backslash removed.
// In strict mode any remaining {WORD} reference is an error.
func SubstituteBraces(text string, ctx map[string]any, strict bool) (string, error) {
	// Protect escaped braces so they neither match references nor trip the
	// strict scan.
	text = strings.ReplaceAll(text, `\{`, escapedLeft)
	text = strings.ReplaceAll(text, `\}`, escapedRight)

	var unresolved []string
	text = braceRef.ReplaceAllStringFunc(text, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := ctx[key]
		if !ok {
			unresolved = append(unresolved, key)
			return match
		}
		rendered, scalar := renderScalar(value)
		if !scalar {
			unresolved = append(unresolved, key)
			return match
		}
		return rendered
	})

	text = strings.ReplaceAll(text, escapedLeft, "{")
	text = strings.ReplaceAll(text, escapedRight, "}")

	if strict && len(unresolved) > 0 {
		sort.Strings(unresolved)
		return text, &UnresolvedError{Names: dedupe(unresolved)}
	}
	return text, nil
}

// Environ exposes the process environment as a token map, the default
// token source when no explicit tokens are supplied.
func Environ() map[string]any {
	env := os.Environ()
	out := make(map[string]any, len(env))
	for _, kv := range env {
		if i := strings.IndexByte(kv, '='); i > 0 {
			out[kv[:i]] = kv[i+1:]
		}
	}
	return out
}

// MergeScalars merges token maps left to right, later maps winning, keeping
// only keys present in any map. Values stay as supplied.
func MergeScalars(maps ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// FromStrings converts a plain string map into a token map.
func FromStrings(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// renderScalar renders a string, bool, int or float token value; any other
// type reports false.
func renderScalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// findRemaining scans for leftover delimited token references.
func findRemaining(text, left, right string) []string {
	pattern := regexp.MustCompile(regexp.QuoteMeta(left) + `(\w+)` + regexp.QuoteMeta(right))
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	sort.Strings(names)
	return dedupe(names)
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
