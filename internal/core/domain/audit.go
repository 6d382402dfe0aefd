package domain

import (
	"errors"
	"strings"
	"time"
)

// AuditStatus classifies an audit entry for filtering and stats.
type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditError   AuditStatus = "error"
	AuditPending AuditStatus = "pending"
)

// Audit event names emitted by the reset protocol coordinator, one per
// terminal state reached, plus the sensitive admin lookup.
const (
	EventDispatched     = "reset.dispatched"
	EventDispatchFailed = "reset.dispatch_failed"
	EventTokenInvalid   = "reset.token_invalid"
	EventComplete       = "reset.credential_changed"
	EventChangeFailed   = "reset.change_failed"
	EventAccountLookup  = "admin.account_lookup"
)

var ErrAuditEntryNotFound = errors.New("audit entry not found")

// AuditEvent is the structured record handed to the audit sink. The core does
// not persist these itself.
type AuditEvent struct {
	CorrelationID string      `json:"correlation_id"`
	Event         string      `json:"event"`
	Identifier    string      `json:"identifier,omitempty"`
	EnvironmentID string      `json:"environment_id,omitempty"`
	Status        AuditStatus `json:"status"`
	Description   string      `json:"description"`
	CreatedAt     time.Time   `json:"created_at"`
}

// AuditEntry is a persisted audit event.
type AuditEntry struct {
	ID string `json:"id"`
	AuditEvent
}

// AuditStats aggregates entry counts by status over a period.
type AuditStats struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Error   int64 `json:"error"`
	Pending int64 `json:"pending"`
}

// RedactIdentifier masks a recovery identifier before it enters audit
// records. Emails keep the first character and the domain; usernames keep
// the first two characters.
func RedactIdentifier(identifier string) string {
	if identifier == "" {
		return ""
	}
	if at := strings.IndexByte(identifier, '@'); at > 0 {
		local := []rune(identifier[:at])
		return string(local[0]) + "***" + identifier[at:]
	}
	r := []rune(identifier)
	if len(r) <= 2 {
		return string(r[0]) + "***"
	}
	return string(r[:2]) + "***"
}
