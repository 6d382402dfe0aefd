package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	credentialSessionKey  = "platform:credential:session"
	credentialDurableKey  = "platform:credential:durable"
	credentialSessionTTL  = 12 * time.Hour
	credentialRememberTTL = 30 * 24 * time.Hour
)

// CredentialStore implements ports.CredentialProvider on Redis. Two keys
// model the two storage locations the console offers: a session-scoped one
// and a long-lived "remember me" one. Get prefers the session credential.
type CredentialStore struct {
	client *redis.Client
}

func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{client: client}
}

// Get returns the stored credential, or empty when none is set.
func (s *CredentialStore) Get(ctx context.Context) (string, error) {
	for _, key := range []string{credentialSessionKey, credentialDurableKey} {
		value, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("get credential: %w", err)
		}
		return value, nil
	}
	return "", nil
}

// Set stores the credential in the location selected by remember.
func (s *CredentialStore) Set(ctx context.Context, credential string, remember bool) error {
	key, ttl := credentialSessionKey, credentialSessionTTL
	if remember {
		key, ttl = credentialDurableKey, credentialRememberTTL
	}
	if err := s.client.Set(ctx, key, credential, ttl).Err(); err != nil {
		return fmt.Errorf("set credential: %w", err)
	}
	return nil
}

// Clear removes the credential from both locations.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, credentialSessionKey, credentialDurableKey).Err(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
