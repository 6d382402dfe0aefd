package ports

import (
	"context"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
)

// EnvironmentRegistry resolves recovery target environments. The backing
// list is fetched once per session and treated as read-mostly reference data.
type EnvironmentRegistry interface {
	// Environments returns all recoverable environments, loading them on
	// first use.
	Environments(ctx context.Context) ([]domain.Environment, error)
	// Resolve returns the environment with the given id.
	// domain.ErrEnvironmentNotFound signals a bad selection (abort);
	// any other error is a transport failure (retryable).
	Resolve(ctx context.Context, id string) (domain.Environment, error)
	// Refresh discards the cached list so the next call reloads it.
	Refresh(ctx context.Context) error
}
