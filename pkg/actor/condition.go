package actor

import "strings"

// conditionMet evaluates the condition gate. A nil condition executes. The
// recognized falsy literals are boolean false, integer zero and the strings
// "0" and "false" (case insensitive); everything else, the empty string
// included, executes.
func conditionMet(condition any) bool {
	switch v := condition.(type) {
	case nil:
		return true
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false":
			return false
		}
		return true
	default:
		return true
	}
}
