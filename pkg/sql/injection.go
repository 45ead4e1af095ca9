package sql

import (
	"fmt"
	"regexp"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
)

// identifierPattern accepts table and schema-qualified table names.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)

// InjectionCheckResult describes a value libinjection flagged.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Name        string // What the value was supplied as (e.g. "table")
	Value       string
}

// CheckValueForInjection runs libinjection over a user-supplied value that is
// about to be interpolated into SQL. Returns nil when the value is clean.
//
// Whole queries are never passed through here: generated and hand-written SQL
// legitimately contains the token sequences libinjection looks for.
func CheckValueForInjection(name, value string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		Name:        name,
		Value:       value,
	}
}

// CheckIdentifier accepts plain or schema-qualified identifiers and rejects
// anything else, including values libinjection flags.
func CheckIdentifier(name string) error {
	if result := CheckValueForInjection("identifier", name); result != nil {
		return fmt.Errorf("%w: identifier %q matches injection fingerprint %s",
			apperrors.ErrValidationRejected, name, result.Fingerprint)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: invalid identifier %q", apperrors.ErrValidationRejected, name)
	}
	return nil
}
