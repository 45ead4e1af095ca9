package sql

import (
	"errors"
	"testing"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
)

func TestCheckValueForInjection(t *testing.T) {
	tests := []struct {
		name            string
		value           string
		expectInjection bool
	}{
		{"plain table name", "customers", false},
		{"snake case", "order_items", false},
		{"clean search term", "laptop computers", false},
		{"tautology", "' OR '1'='1", true},
		{"stacked drop", "'; DROP TABLE users--", true},
		{"union select", "1 UNION SELECT * FROM passwords", true},
		{"comment truncation", "admin'--", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckValueForInjection("table", tt.value)
			if tt.expectInjection {
				if result == nil {
					t.Fatalf("expected injection detected for %q", tt.value)
				}
				if result.Fingerprint == "" {
					t.Error("expected non-empty fingerprint")
				}
				if result.Name != "table" || result.Value != tt.value {
					t.Errorf("unexpected result metadata: %+v", result)
				}
			} else if result != nil {
				t.Errorf("unexpected injection for %q: fingerprint %s", tt.value, result.Fingerprint)
			}
		})
	}
}

func TestCheckIdentifier(t *testing.T) {
	valid := []string{"users", "order_items", "public.users", "_staging", "t1"}
	for _, name := range valid {
		if err := CheckIdentifier(name); err != nil {
			t.Errorf("CheckIdentifier(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "users; DROP TABLE x", "1users", "a.b.c", "users--", "' OR '1'='1", "name with space"}
	for _, name := range invalid {
		err := CheckIdentifier(name)
		if err == nil {
			t.Errorf("CheckIdentifier(%q) = nil, want error", name)
			continue
		}
		if !errors.Is(err, apperrors.ErrValidationRejected) {
			t.Errorf("CheckIdentifier(%q) error %v does not wrap ErrValidationRejected", name, err)
		}
	}
}
