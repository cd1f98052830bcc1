package usecase

import "time"

// Authentication event actions recorded in the audit trail.
const (
	AuditActionRegister = "register"
	AuditActionLogin    = "login"
)

// AuthEvent describes the outcome of an authentication attempt.
type AuthEvent struct {
	UserID   int64
	Username string
	Action   string
	Success  bool
	Time     time.Time
}

// AuditTrail abstracts the audit recorder so use cases stay storage-agnostic.
// Recording must never block or fail the request being audited.
type AuditTrail interface {
	Record(event AuthEvent)
}
