package domain

import "time"

// AuditOutcome classifies how an audited operation ended.
type AuditOutcome string

const (
	AuditSuccess AuditOutcome = "success"
	AuditFailed  AuditOutcome = "failed"
)

// AuditEvent is a structured record of an operator action. Events are
// emitted fire-and-forget: recording never blocks or fails the operation
// that produced them.
type AuditEvent struct {
	ID         string       `json:"id,omitempty"`
	UserID     string       `json:"user_id"`
	Username   string       `json:"username"`
	Action     string       `json:"action"`
	Resource   string       `json:"resource"`
	ResourceID string       `json:"resource_id,omitempty"`
	Method     string       `json:"method,omitempty"`
	Path       string       `json:"path,omitempty"`
	IP         string       `json:"ip,omitempty"`
	UserAgent  string       `json:"user_agent,omitempty"`
	Outcome    AuditOutcome `json:"outcome"`
	Error      string       `json:"error,omitempty"`
	Duration   int64        `json:"duration_ms"`
	CreatedAt  time.Time    `json:"created_at"`
}
