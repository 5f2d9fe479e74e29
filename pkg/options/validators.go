package options

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// StringCompare accepts only values drawn from a fixed set of string
// literals. Comparison is case sensitive unless FoldCase is set.
type StringCompare struct {
	Accepted []string
	FoldCase bool
}

// Validate implements Validator.
func (c *StringCompare) Validate(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected one of %v, got %v (%T)", c.Accepted, value, value)
	}
	for _, accepted := range c.Accepted {
		if s == accepted || (c.FoldCase && strings.EqualFold(s, accepted)) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%q is not one of %v", s, c.Accepted)
}

// SchemaCompare validates values against a CUE schema. The schema is compiled
// once at construction; a schema that fails to compile is a configuration
// error surfaced immediately.
type SchemaCompare struct {
	ctx    *cue.Context
	schema cue.Value
	source string
}

// NewSchemaCompare compiles schema and returns the validator.
func NewSchemaCompare(schema string) (*SchemaCompare, error) {
	ctx := cuecontext.New()
	val := ctx.CompileString(schema)
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile option schema: %w", err)
	}
	return &SchemaCompare{ctx: ctx, schema: val, source: schema}, nil
}

// MustSchemaCompare is NewSchemaCompare that panics on a bad schema. Intended
// for package-level validator declarations, where a bad schema is a
// programming error.
func MustSchemaCompare(schema string) *SchemaCompare {
	c, err := NewSchemaCompare(schema)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate implements Validator by unifying the value with the schema.
func (c *SchemaCompare) Validate(value any) (any, error) {
	dataVal := c.ctx.Encode(value)
	if err := dataVal.Err(); err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	unified := c.schema.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("value does not match schema: %w", err)
	}
	return value, nil
}
