package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"SELECT 1"`, "SELECT 1"},
		{"integer", `42`, "42"},
		{"float", `3.5`, "3.5"},
		{"bool", `true`, "true"},
		{"null", `null`, ""},
		{"empty", ``, ""},
		{"object", `{"a":1}`, `{"a":1}`},
		{"padded", `  "x"  `, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlexibleStringValue(json.RawMessage(tt.raw)); got != tt.want {
				t.Errorf("FlexibleStringValue(%s) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
