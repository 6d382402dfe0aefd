package domain

import (
	"errors"
	"time"
)

// TokenState represents the lifecycle state of a recovery token.
type TokenState string

const (
	TokenUnvalidated TokenState = "unvalidated"
	TokenValid       TokenState = "valid"
	TokenInvalid     TokenState = "invalid"
	TokenConsumed    TokenState = "consumed"
)

// tokenTransitions defines the allowed token state transitions. A consumed
// token has no outgoing transitions: at most one credential change per token.
var tokenTransitions = map[TokenState][]TokenState{
	TokenUnvalidated: {TokenValid, TokenInvalid},
	TokenValid:       {TokenConsumed},
}

// TokenFailureReason explains why a token was rejected.
type TokenFailureReason string

const (
	ReasonExpired         TokenFailureReason = "expired"
	ReasonUnknown         TokenFailureReason = "unknown"
	ReasonAlreadyConsumed TokenFailureReason = "already_consumed"
)

var ErrTokenInvalid = errors.New("token is invalid")
var ErrTokenExpired = errors.New("token has expired")
var ErrTokenConsumed = errors.New("token has already been used")
var ErrCredentialChangeFailed = errors.New("credential change failed")

// CanTransitionTo reports whether a token state transition is valid.
func (s TokenState) CanTransitionTo(next TokenState) bool {
	for _, allowed := range tokenTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RecoveryToken is the one-time, time-limited opaque value that authorizes a
// single credential change. The value is never generated locally; it arrives
// out-of-band through the recovery email.
type RecoveryToken struct {
	Value         string     `json:"value"`
	EnvironmentID string     `json:"environment_id"`
	IssuedAt      time.Time  `json:"issued_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	State         TokenState `json:"state"`
}

// Expired reports whether the token's expiry window has elapsed at now.
// A zero ExpiresAt means the remote side did not report a window.
func (t RecoveryToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// FailureError maps a failure reason to its domain error.
func (r TokenFailureReason) FailureError() error {
	switch r {
	case ReasonExpired:
		return ErrTokenExpired
	case ReasonAlreadyConsumed:
		return ErrTokenConsumed
	default:
		return ErrTokenInvalid
	}
}
