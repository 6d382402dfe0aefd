package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

type stubAuditRepo struct {
	entries   []*domain.AuditEntry
	lastQuery ports.AuditQuery
}

func (r *stubAuditRepo) Insert(_ context.Context, entry *domain.AuditEntry) error {
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *stubAuditRepo) FindByID(_ context.Context, id string) (*domain.AuditEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			clone := *e
			return &clone, nil
		}
	}
	return nil, domain.ErrAuditEntryNotFound
}

func (r *stubAuditRepo) List(_ context.Context, q ports.AuditQuery) ([]*domain.AuditEntry, int64, error) {
	r.lastQuery = q
	return r.entries, int64(len(r.entries)), nil
}

func (r *stubAuditRepo) Stats(context.Context, time.Time, time.Time) (*domain.AuditStats, error) {
	stats := &domain.AuditStats{}
	for _, e := range r.entries {
		stats.Total++
		switch e.Status {
		case domain.AuditSuccess:
			stats.Success++
		case domain.AuditError:
			stats.Error++
		case domain.AuditPending:
			stats.Pending++
		}
	}
	return stats, nil
}

func TestAuditBrowser_ListNormalizesPaging(t *testing.T) {
	repo := &stubAuditRepo{}
	for i := 0; i < 25; i++ {
		_ = repo.Insert(context.Background(), &domain.AuditEntry{
			AuditEvent: domain.AuditEvent{Status: domain.AuditSuccess},
		})
	}
	svc := NewAuditBrowser(repo, zerolog.Nop())

	page, err := svc.List(context.Background(), ports.AuditQuery{Page: 0, Limit: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastQuery.Page != 1 || repo.lastQuery.Limit != 10 {
		t.Fatalf("query not normalized: %+v", repo.lastQuery)
	}
	if page.TotalPages != 3 {
		t.Fatalf("total pages = %d, want 3", page.TotalPages)
	}

	if _, err := svc.List(context.Background(), ports.AuditQuery{Limit: 5000}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastQuery.Limit != maxAuditPageSize {
		t.Fatalf("limit not capped: %d", repo.lastQuery.Limit)
	}
}

func TestAuditBrowser_Stats(t *testing.T) {
	repo := &stubAuditRepo{}
	statuses := []domain.AuditStatus{domain.AuditSuccess, domain.AuditSuccess, domain.AuditError, domain.AuditPending}
	for _, s := range statuses {
		_ = repo.Insert(context.Background(), &domain.AuditEntry{AuditEvent: domain.AuditEvent{Status: s}})
	}
	svc := NewAuditBrowser(repo, zerolog.Nop())

	stats, err := svc.Stats(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 4 || stats.Success != 2 || stats.Error != 1 || stats.Pending != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
