package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

const maxAuditPageSize = 100

// AuditBrowser serves the admin console's audit log screens: paged listing,
// entry detail, and aggregate stats.
type AuditBrowser struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

func NewAuditBrowser(repo ports.AuditRepository, log zerolog.Logger) *AuditBrowser {
	return &AuditBrowser{repo: repo, log: log}
}

func (s *AuditBrowser) List(ctx context.Context, q ports.AuditQuery) (*ports.AuditPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > maxAuditPageSize {
		q.Limit = maxAuditPageSize
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / q.Limit
	if int(total)%q.Limit != 0 {
		totalPages++
	}

	return &ports.AuditPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *AuditBrowser) Get(ctx context.Context, id string) (*domain.AuditEntry, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AuditBrowser) Stats(ctx context.Context, from, to time.Time) (*domain.AuditStats, error) {
	return s.repo.Stats(ctx, from, to)
}
