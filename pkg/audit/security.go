// Package audit logs security-relevant request events as structured JSON
// under the "security_audit" logger for SIEM consumption.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection flags a value
	// that would be interpolated into SQL (a table name).
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventStatementRejected is logged when the validator refuses a
	// playground statement before it reaches the connection.
	EventStatementRejected SecurityEventType = "statement_rejected"
)

// maxAuditValueLength bounds user-supplied text copied into events.
const maxAuditValueLength = 200

// SecurityEvent is one auditable event.
type SecurityEvent struct {
	EventID   string            `json:"event_id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// InjectionDetails describes a flagged value.
type InjectionDetails struct {
	Field       string `json:"field"`
	Value       string `json:"value"`
	Fingerprint string `json:"fingerprint"` // libinjection fingerprint for pattern analysis
}

// RejectionDetails describes a refused statement. Query is sanitized.
type RejectionDetails struct {
	Query  string `json:"query"`
	Reason string `json:"reason"`
}

// SecurityAuditor logs security events. A nil *SecurityAuditor is valid and
// logs nothing.
type SecurityAuditor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSecurityAuditor creates an auditor with the "security_audit" namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{
		logger: logger.Named("security_audit"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// LogInjectionAttempt records a flagged value at ERROR level with
// "critical" severity.
func (a *SecurityAuditor) LogInjectionAttempt(details InjectionDetails, clientIP string) {
	if a == nil {
		return
	}
	details.Value = logging.TruncateString(details.Value, maxAuditValueLength)
	event := a.newEvent(EventSQLInjectionAttempt, "critical", clientIP, details)

	a.logger.Error("SQL injection attempt detected",
		zap.String("event_json", event.encode()),
		zap.String("event_id", event.EventID),
		zap.String("field", details.Field),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("client_ip", clientIP),
		zap.String("severity", event.Severity),
	)
}

// LogStatementRejected records a refused statement at WARN level; these are
// usually mistakes rather than attacks.
func (a *SecurityAuditor) LogStatementRejected(query, reason, clientIP string) {
	if a == nil {
		return
	}
	details := RejectionDetails{Query: logging.SanitizeQuery(query), Reason: reason}
	event := a.newEvent(EventStatementRejected, "warning", clientIP, details)

	a.logger.Warn("Statement rejected",
		zap.String("event_json", event.encode()),
		zap.String("event_id", event.EventID),
		zap.String("reason", reason),
		zap.String("client_ip", clientIP),
		zap.String("severity", event.Severity),
	)
}

func (a *SecurityAuditor) newEvent(t SecurityEventType, severity, clientIP string, details any) SecurityEvent {
	return SecurityEvent{
		EventID:   uuid.New().String(),
		Timestamp: a.now(),
		EventType: t,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  severity,
	}
}

func (e SecurityEvent) encode() string {
	// Marshaling these fixed shapes cannot fail.
	b, _ := json.Marshal(e)
	return string(b)
}
