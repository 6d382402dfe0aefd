package ports

import (
	"context"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
)

// SubmitResetInput carries one reset submission. EnvironmentIDs holds one id
// on the self-service path and 1..N ids on the admin fan-out path.
type SubmitResetInput struct {
	EnvironmentIDs []string
	Identifier     domain.RecoveryIdentifier
}

// ValidateTokenInput identifies a token pasted or linked back by the user.
type ValidateTokenInput struct {
	EnvironmentID string
	TokenValue    string
}

// TokenValidation is the caller-facing view of a token check.
type TokenValidation struct {
	Valid   bool                      `json:"valid"`
	Reason  domain.TokenFailureReason `json:"reason,omitempty"`
	Context map[string]string         `json:"context,omitempty"`
}

// ChangeCredentialInput commits a new credential with a previously
// dispatched token.
type ChangeCredentialInput struct {
	EnvironmentID string
	TokenValue    string
	NewCredential string
}

// CredentialChange is the caller-facing outcome of a credential change.
type CredentialChange struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	RedirectHint string `json:"redirect,omitempty"`
}

// AccountLookupInput carries the admin-only identifier lookup.
type AccountLookupInput struct {
	EnvironmentID string
	Email         string
	Username      string
}

// RecoveryService exposes the reset protocol to the transport layer. It is
// the only component allowed to cause a session state transition.
type RecoveryService interface {
	SubmitReset(ctx context.Context, in SubmitResetInput) (*domain.DispatchSummary, error)
	ValidateToken(ctx context.Context, in ValidateTokenInput) (*TokenValidation, error)
	ChangeCredential(ctx context.Context, in ChangeCredentialInput) (*CredentialChange, error)
	FindAccount(ctx context.Context, in AccountLookupInput) (*AccountDetails, error)
	TestConnection(ctx context.Context, environmentID string) error
}
