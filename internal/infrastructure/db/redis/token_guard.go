package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultConsumedTTL = 48 * time.Hour

// ConsumedTokenGuard records spent recovery tokens in Redis, enforcing the
// one-way valid → consumed transition across process restarts. Token values
// are hashed before keying so the opaque value never lands in the store.
// Key format: recovery:consumed:<sha256(token)>
type ConsumedTokenGuard struct {
	client *redis.Client
}

// NewConsumedTokenGuard creates a ConsumedTokenGuard wrapping the given Redis client.
func NewConsumedTokenGuard(client *redis.Client) *ConsumedTokenGuard {
	return &ConsumedTokenGuard{client: client}
}

// IsConsumed reports whether this token has already authorized a credential change.
func (g *ConsumedTokenGuard) IsConsumed(ctx context.Context, tokenValue string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(tokenValue)).Result()
	if err != nil {
		return false, fmt.Errorf("consumed check: %w", err)
	}
	return n > 0, nil
}

// MarkConsumed records the token as spent. The marker outlives any realistic
// expiry window; after that the remote side rejects the token on its own.
func (g *ConsumedTokenGuard) MarkConsumed(ctx context.Context, tokenValue string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultConsumedTTL
	}
	return g.client.Set(ctx, g.key(tokenValue), "1", ttl).Err()
}

func (g *ConsumedTokenGuard) key(tokenValue string) string {
	sum := sha256.Sum256([]byte(tokenValue))
	return "recovery:consumed:" + hex.EncodeToString(sum[:])
}
