package ports

import (
	"context"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
)

// ResetRequestInput carries the recovery identifier for one environment.
// Exactly one of Email or Username is set (enforced before any call).
type ResetRequestInput struct {
	Email    string
	Username string
}

// ResetRequestResult is the generic outcome of a reset-request call. The
// remote operation is anti-enumeration by design: it reports success even
// when no matching account exists.
type ResetRequestResult struct {
	Success bool
	Message string
}

// TokenCheckResult is the outcome of a remote token validation.
type TokenCheckResult struct {
	Valid bool
	// Reason is set when Valid is false.
	Reason domain.TokenFailureReason
	// Context holds account fields returned for a valid token
	// (fullname, email, username, expires_at).
	Context map[string]string
}

// ChangeCredentialResult is the outcome of a credential-change call.
type ChangeCredentialResult struct {
	Success      bool
	Message      string
	RedirectHint string
}

// FindAccountInput carries the admin lookup identifier. Unlike the reset
// path, the lookup deliberately reveals account existence.
type FindAccountInput struct {
	Email    string
	Username string
}

// AccountDetails is the admin lookup result.
type AccountDetails struct {
	ID        string `json:"id"`
	FullName  string `json:"fullname"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Suspended bool   `json:"suspended"`
	Confirmed bool   `json:"confirmed"`
}

// PlatformGateway is the typed transport to the remote learning-platform
// environments. Every method call is an awaited network boundary; errors
// returned here are transport failures and are retryable by the caller.
// Protocol-level failures come back inside the result types.
type PlatformGateway interface {
	// ListEnvironments fetches the recoverable environment base URLs from
	// the directory endpoint.
	ListEnvironments(ctx context.Context) ([]string, error)
	SubmitResetRequest(ctx context.Context, baseURL string, in ResetRequestInput) (*ResetRequestResult, error)
	ValidateToken(ctx context.Context, baseURL, tokenValue string) (*TokenCheckResult, error)
	ChangeCredential(ctx context.Context, baseURL, tokenValue, newCredential string) (*ChangeCredentialResult, error)
	FindAccount(ctx context.Context, baseURL string, in FindAccountInput) (*AccountDetails, error)
	TestConnection(ctx context.Context, baseURL string) error
}
