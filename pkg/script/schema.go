package script

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// nodeSchema is the orchestration node shape. The definition is closed, so an
// unexpected top-level key is a schema violation. The acts list inside
// options is validated recursively in Go against this same schema.
const nodeSchema = `
#Node: {
	// desc is a human-readable description template
	desc?: string

	// actor is the dotted actor name
	actor: string & !=""

	// options is the actor-specific options mapping
	options?: {...}

	// warn_on_failure converts a recoverable failure into a warning
	warn_on_failure?: bool

	// timeout is the per-actor timeout in seconds
	timeout?: number & >=0

	// condition gates execution
	condition?: bool | string
}
`

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaVal  cue.Value
	schemaErr  error
)

// validateNodeShape checks a raw node mapping against the orchestration
// schema, returning the underlying CUE diagnostic on violation.
func validateNodeShape(node map[string]any) error {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		compiled := schemaCtx.CompileString(nodeSchema)
		if err := compiled.Err(); err != nil {
			schemaErr = fmt.Errorf("failed to compile orchestration schema: %w", err)
			return
		}
		schemaVal = compiled.LookupPath(cue.ParsePath("#Node"))
		if err := schemaVal.Err(); err != nil {
			schemaErr = fmt.Errorf("orchestration schema has no #Node: %w", err)
		}
	})
	if schemaErr != nil {
		return schemaErr
	}

	dataVal := schemaCtx.Encode(node)
	if err := dataVal.Err(); err != nil {
		return fmt.Errorf("failed to encode node: %w", err)
	}
	unified := schemaVal.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
