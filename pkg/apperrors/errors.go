package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrValidationRejected = errors.New("query rejected by validation")
	ErrUnsupportedDialect = errors.New("unsupported dialect")
	ErrGenerationFailed   = errors.New("sql generation failed")
	ErrExecutionFailed    = errors.New("query execution failed")
	ErrSchemaInvalid      = errors.New("invalid schema")
	ErrPersistence        = errors.New("persistence failure")
	ErrInvalidProfile     = errors.New("invalid connection profile")
	ErrInvalidPreference  = errors.New("invalid preference")
)

// Kind returns a stable machine-readable name for the first sentinel in err's
// chain, or "internal_error" when err matches none of them.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidationRejected):
		return "validation_rejected"
	case errors.Is(err, ErrUnsupportedDialect):
		return "unsupported_dialect"
	case errors.Is(err, ErrGenerationFailed):
		return "generation_failed"
	case errors.Is(err, ErrExecutionFailed):
		return "execution_failed"
	case errors.Is(err, ErrSchemaInvalid):
		return "schema_invalid"
	case errors.Is(err, ErrPersistence):
		return "persistence_failure"
	case errors.Is(err, ErrInvalidProfile):
		return "invalid_profile"
	case errors.Is(err, ErrInvalidPreference):
		return "invalid_preference"
	default:
		return "internal_error"
	}
}
