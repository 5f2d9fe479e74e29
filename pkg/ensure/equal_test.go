package ensure

import "testing"

func TestEqualValues(t *testing.T) {
	tests := []struct {
		name    string
		actual  any
		desired any
		want    bool
	}{
		{"identical strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"string slice vs any slice", []string{"a", "b"}, []any{"a", "b"}, true},
		{"slice order matters", []any{"a", "b"}, []any{"b", "a"}, false},
		{"int vs float", 5, 5.0, true},
		{"int64 vs int", int64(5), 5, true},
		{"numeric mismatch", 5, 6.0, false},
		{"map any keys vs string keys", map[any]any{"k": 1}, map[string]any{"k": 1.0}, true},
		{"nested mixed", map[string]any{"tags": []string{"a"}}, map[any]any{"tags": []any{"a"}}, true},
		{"nil vs empty slice differ", nil, []any{}, false},
		{"bools", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := equalValues(tt.actual, tt.desired); got != tt.want {
				t.Errorf("Expected %v for %v vs %v, got %v", tt.want, tt.actual, tt.desired, got)
			}
		})
	}
}

func TestStatus_Validate(t *testing.T) {
	for _, s := range []Status{StatusInit, StatusPrecached, StatusStateChecked, StatusConverged} {
		if err := s.Validate(); err != nil {
			t.Errorf("Expected %s to validate, got: %v", s, err)
		}
	}
	if err := Status("half-done").Validate(); err == nil {
		t.Error("Expected unknown status to fail validation")
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	if !StatusConverged.IsTerminal() {
		t.Error("Expected converged to be terminal")
	}
	for _, s := range []Status{StatusInit, StatusPrecached, StatusStateChecked} {
		if s.IsTerminal() {
			t.Errorf("Expected %s not to be terminal", s)
		}
	}
}
