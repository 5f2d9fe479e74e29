package ensure

import "reflect"

// equalValues compares an actual value from a getter against a desired option
// value, tolerating the representation differences YAML and JSON decoding
// leave behind: []string vs []any, map[any]any vs map[string]any, and the
// int/int64/float64 numeric split.
func equalValues(actual, desired any) bool {
	return reflect.DeepEqual(normalize(actual), normalize(desired))
}

func normalize(v any) any {
	switch t := v.(type) {
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			if ks, ok := k.(string); ok {
				out[ks] = normalize(e)
			}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}
