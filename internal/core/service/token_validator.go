package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

// TokenGuard abstracts the consumed-token store (Redis). Marking is the
// one-way valid → consumed transition: once marked, a token is rejected for
// any further use even inside its expiry window.
type TokenGuard interface {
	IsConsumed(ctx context.Context, tokenValue string) (bool, error)
	MarkConsumed(ctx context.Context, tokenValue string, ttl time.Duration) error
}

// consumedGuardTTL keeps consumed markers around past any realistic token
// expiry window.
const consumedGuardTTL = 48 * time.Hour

// TokenValidator checks the state of a recovery token against the remote
// environment and the local consumed-token guard. It never mutates state
// speculatively: consumption is recorded only after a successful credential
// change.
type TokenValidator struct {
	gateway ports.PlatformGateway
	guard   TokenGuard
	log     zerolog.Logger
}

func NewTokenValidator(gateway ports.PlatformGateway, guard TokenGuard, log zerolog.Logger) *TokenValidator {
	return &TokenValidator{gateway: gateway, guard: guard, log: log}
}

// Validate checks the token against env. The returned error is non-nil only
// for transport failures (retryable); protocol-level rejection comes back in
// the result's Reason.
func (v *TokenValidator) Validate(ctx context.Context, env domain.Environment, tokenValue string) (*ports.TokenCheckResult, error) {
	consumed, err := v.guard.IsConsumed(ctx, tokenValue)
	if err != nil {
		// Fail closed: at-most-once cannot be guaranteed without the guard.
		return nil, fmt.Errorf("consumed-token check: %w", err)
	}
	if consumed {
		v.log.Warn().Str("environment", env.ID).Msg("rejected already-consumed token")
		return &ports.TokenCheckResult{Valid: false, Reason: domain.ReasonAlreadyConsumed}, nil
	}

	result, err := v.gateway.ValidateToken(ctx, env.BaseURL, tokenValue)
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}
	return result, nil
}

// Consume records the token as used. Called exactly once, after the remote
// credential change succeeded.
func (v *TokenValidator) Consume(ctx context.Context, tokenValue string) error {
	if err := v.guard.MarkConsumed(ctx, tokenValue, consumedGuardTTL); err != nil {
		return fmt.Errorf("mark token consumed: %w", err)
	}
	return nil
}
