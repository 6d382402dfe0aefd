package ports

import (
	"context"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
)

// OperatorRepository defines persistence for console operator accounts.
type OperatorRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Operator, error)
	Create(ctx context.Context, op *domain.Operator) (*domain.Operator, error)
}

// AuthService authenticates console operators.
type AuthService interface {
	Register(ctx context.Context, username, password, email, role string) (*domain.Operator, error)
	// Login returns a signed session token. When remember is true the
	// credential provider stores it in the long-lived location.
	Login(ctx context.Context, username, password string, remember bool) (string, *domain.Operator, error)
}
