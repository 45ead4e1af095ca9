package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
)

// maxLoggedBody bounds how much of a request body is buffered for logging.
const maxLoggedBody = 64 << 10

// APIRequestLogger returns middleware that logs JSON API calls: the request
// fields (SQL sanitized, secrets redacted) and whether the response envelope
// reported success. Pass nil logger to disable logging.
func APIRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// If no logger provided, pass through without logging
		if logger == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var fields map[string]any
			if r.Body != nil && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
				if err != nil {
					logger.Error("Failed to read API request body", zap.Error(err))
					next.ServeHTTP(w, r)
					return
				}
				// Restore the body, including anything past the logging limit.
				r.Body = struct {
					io.Reader
					io.Closer
				}{io.MultiReader(bytes.NewReader(bodyBytes), r.Body), r.Body}

				if len(bodyBytes) <= maxLoggedBody {
					if err := json.Unmarshal(bodyBytes, &fields); err != nil {
						logger.Debug("Failed to parse API request JSON", zap.Error(err))
					}
				}
			}

			logger.Debug("API request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Any("fields", sanitizeFields(fields)),
			)

			recorder := &apiResponseRecorder{ResponseWriter: w, body: &bytes.Buffer{}}
			start := time.Now()

			next.ServeHTTP(recorder, r)

			duration := time.Since(start)

			var envelope apiEnvelope
			if err := json.Unmarshal(recorder.body.Bytes(), &envelope); err != nil {
				return
			}

			if envelope.Success {
				logger.Debug("API response success",
					zap.String("path", r.URL.Path),
					zap.Duration("duration", duration),
				)
				return
			}
			logger.Debug("API response error",
				zap.String("path", r.URL.Path),
				zap.String("error", envelope.Error),
				zap.String("message", logging.TruncateString(envelope.Message, 200)),
				zap.Duration("duration", duration),
			)
		})
	}
}

// apiEnvelope is the subset of the handlers' response envelope read here.
type apiEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// apiResponseRecorder captures the response body while writing it through.
type apiResponseRecorder struct {
	http.ResponseWriter
	body *bytes.Buffer
}

func (r *apiResponseRecorder) Write(b []byte) (int, error) {
	if r.body.Len() < maxLoggedBody {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

// sqlFields hold SQL text and are logged through logging.SanitizeQuery.
var sqlFields = map[string]bool{"sql": true, "query": true, "sql_query": true}

// sanitizeFields redacts sensitive fields and truncates long values.
func sanitizeFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	sensitiveKeywords := []string{"password", "secret", "token", "key", "credential"}
	result := make(map[string]any, len(fields))

	for k, v := range fields {
		lowerKey := strings.ToLower(k)
		isSensitive := false
		for _, keyword := range sensitiveKeywords {
			if strings.Contains(lowerKey, keyword) {
				isSensitive = true
				break
			}
		}

		if isSensitive {
			result[k] = logging.RedactedText
			continue
		}

		str, ok := v.(string)
		switch {
		case ok && sqlFields[lowerKey]:
			result[k] = logging.SanitizeQuery(str)
		case ok && len(str) > 200:
			result[k] = str[:200] + "..."
		default:
			result[k] = v
		}
	}

	return result
}
