package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

// EnvironmentRegistry caches the recoverable environments fetched from the
// platform directory. The list is loaded on first use and then treated as
// read-mostly reference data; ids are assigned deterministically from the
// listing order and keyed by unique base URL.
type EnvironmentRegistry struct {
	gateway ports.PlatformGateway
	log     zerolog.Logger

	mu     sync.Mutex
	loaded bool
	envs   []domain.Environment
}

func NewEnvironmentRegistry(gateway ports.PlatformGateway, log zerolog.Logger) *EnvironmentRegistry {
	return &EnvironmentRegistry{gateway: gateway, log: log}
}

// Environments returns all recoverable environments, loading the directory
// listing on first use.
func (r *EnvironmentRegistry) Environments(ctx context.Context) ([]domain.Environment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadLocked(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Environment, len(r.envs))
	copy(out, r.envs)
	return out, nil
}

// Resolve returns the environment with the given id. A missing id yields
// domain.ErrEnvironmentNotFound, distinct from transport failures, so the
// caller can abort instead of retrying.
func (r *EnvironmentRegistry) Resolve(ctx context.Context, id string) (domain.Environment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadLocked(ctx); err != nil {
		return domain.Environment{}, err
	}
	for _, env := range r.envs {
		if env.ID == id {
			return env, nil
		}
	}
	return domain.Environment{}, domain.ErrEnvironmentNotFound
}

// Refresh discards the cached listing; the next call reloads it.
func (r *EnvironmentRegistry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loaded = false
	r.envs = nil
	return r.loadLocked(ctx)
}

func (r *EnvironmentRegistry) loadLocked(ctx context.Context) error {
	if r.loaded {
		return nil
	}

	urls, err := r.gateway.ListEnvironments(ctx)
	if err != nil {
		return fmt.Errorf("load environments: %w", err)
	}

	envs := make([]domain.Environment, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		envs = append(envs, domain.Environment{
			ID:      fmt.Sprintf("env-%d", len(envs)),
			BaseURL: url,
		})
	}

	r.envs = envs
	r.loaded = true
	r.log.Info().Int("count", len(envs)).Msg("environment registry loaded")
	return nil
}
