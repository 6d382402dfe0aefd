package ports

import (
	"context"
	"time"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
)

// AuditSink receives structured events from the coordinator. Implementations
// must not block the protocol flow; persistence happens out of band.
type AuditSink interface {
	Record(event domain.AuditEvent)
}

// AuditQuery carries the filters for listing audit entries.
type AuditQuery struct {
	Search   string             // partial match on identifier or description
	Status   domain.AuditStatus // optional
	DateFrom time.Time          // optional: created_at >= DateFrom
	DateTo   time.Time          // optional: created_at <= DateTo
	Page     int                // 1-based
	Limit    int                // capped at 100 by the service
}

// AuditRepository persists and queries audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
	FindByID(ctx context.Context, id string) (*domain.AuditEntry, error)
	List(ctx context.Context, q AuditQuery) ([]*domain.AuditEntry, int64, error)
	Stats(ctx context.Context, from, to time.Time) (*domain.AuditStats, error)
}

// AuditPage is one page of audit entries.
type AuditPage struct {
	Items      []*domain.AuditEntry `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

// AuditService exposes audit browsing to the admin console.
type AuditService interface {
	List(ctx context.Context, q AuditQuery) (*AuditPage, error)
	Get(ctx context.Context, id string) (*domain.AuditEntry, error)
	Stats(ctx context.Context, from, to time.Time) (*domain.AuditStats, error)
}
