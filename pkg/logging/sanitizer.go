package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	// MaxQueryLogLength caps SQL text attached to log entries.
	MaxQueryLogLength = 200
	// RedactedText replaces sensitive values.
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx up to the next delimiter
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Authorization header values, JWT or opaque
	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-_.=]+`)

	// key=..., api_key=..., apikey=...
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9\-_]{20,}`)

	// Provider secret keys (sk-..., sk-ant-...)
	secretKeyPattern = regexp.MustCompile(`\bsk-[A-Za-z0-9\-_]{16,}`)

	// user:pass@host in URLs and DSNs
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeConnectionString removes credentials from DSNs and keyword/value
// connection strings.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
}

// SanitizeError returns err's message with credentials and tokens removed.
// Use it for driver and provider errors before logging them.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return sanitize(err.Error())
}

// SanitizeQuery collapses whitespace, truncates, and redacts SQL text for logging.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}
	collapsed := strings.TrimSpace(whitespacePattern.ReplaceAllString(query, " "))
	return sanitize(TruncateString(collapsed, MaxQueryLogLength))
}

// TruncateString truncates s to maxLen bytes and appends an ellipsis if needed.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Query is a zap field carrying sanitized SQL.
func Query(query string) zap.Field {
	return zap.String("query", SanitizeQuery(query))
}

// Error is a zap field carrying a sanitized error message.
func Error(err error) zap.Field {
	return zap.String("error", SanitizeError(err))
}

func sanitize(s string) string {
	s = passwordPattern.ReplaceAllString(s, "${1}="+RedactedText)
	s = bearerPattern.ReplaceAllString(s, "Bearer "+RedactedText)
	s = apiKeyPattern.ReplaceAllString(s, "${1}="+RedactedText)
	s = secretKeyPattern.ReplaceAllString(s, RedactedText)
	return connStringPattern.ReplaceAllString(s, "://"+RedactedText+"@"+RedactedText)
}
