package script

import (
	"context"
	"fmt"
	"time"

	"go.starlark.net/starlark"

	"github.com/overture-run/overture/pkg/actor"
)

// starlarkTimeout bounds procedural script evaluation.
const starlarkTimeout = 30 * time.Second

// evalStarlark runs a .star source as a procedural script generator. The
// program must define main(tokens) returning the script document (a node
// mapping or a list of them). Evaluation runs off the caller's goroutine so
// the timeout holds even for a non-cooperative script.
func (c *Compiler) evalStarlark(ctx context.Context, source string, tok map[string]string) (any, error) {
	text, err := load(ctx, source)
	if err != nil {
		return nil, err
	}

	evalCtx, cancel := context.WithTimeout(ctx, starlarkTimeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := runStarlark(source, text, tok)
		done <- outcome{value: value, err: err}
	}()

	select {
	case <-evalCtx.Done():
		return nil, &actor.InvalidScriptError{
			Source: source,
			Diag:   fmt.Errorf("starlark evaluation timed out after %s", starlarkTimeout),
		}
	case out := <-done:
		if out.err != nil {
			return nil, &actor.InvalidScriptError{Source: source, Diag: out.err}
		}
		return out.value, nil
	}
}

func runStarlark(source, text string, tok map[string]string) (any, error) {
	thread := &starlark.Thread{Name: "overture-script"}

	tokensDict := starlark.NewDict(len(tok))
	for k, v := range tok {
		if err := tokensDict.SetKey(starlark.String(k), starlark.String(v)); err != nil {
			return nil, err
		}
	}

	globals, err := starlark.ExecFile(thread, source, text, nil)
	if err != nil {
		return nil, err
	}

	mainFn, ok := globals["main"]
	if !ok {
		return nil, fmt.Errorf("starlark script must define main(tokens)")
	}
	result, err := starlark.Call(thread, mainFn, starlark.Tuple{tokensDict}, nil)
	if err != nil {
		return nil, err
	}
	return fromStarlarkValue(result)
}

// fromStarlarkValue converts a Starlark value into the plain Go shapes the
// compiler expects from YAML parsing.
func fromStarlarkValue(v starlark.Value) (any, error) {
	switch t := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(t), nil
	case starlark.String:
		return string(t), nil
	case starlark.Int:
		if i, ok := t.Int64(); ok {
			return int(i), nil
		}
		return nil, fmt.Errorf("integer %s does not fit in int64", t.String())
	case starlark.Float:
		return float64(t), nil
	case *starlark.List:
		out := make([]any, 0, t.Len())
		iter := t.Iterate()
		defer iter.Done()
		var elem starlark.Value
		for iter.Next(&elem) {
			converted, err := fromStarlarkValue(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	case *starlark.Dict:
		out := make(map[string]any, t.Len())
		for _, item := range t.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key %s is not a string", item[0].String())
			}
			converted, err := fromStarlarkValue(item[1])
			if err != nil {
				return nil, err
			}
			out[string(key)] = converted
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported starlark value type %s", v.Type())
	}
}
