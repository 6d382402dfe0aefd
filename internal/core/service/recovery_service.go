package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/api/metrics"
	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

// RecoveryService adapts the session-based coordinator to the stateless REST
// surface. Each operation drives a session through the protocol; durable
// invariants (at-most-once token use) are enforced by the coordinator's
// token guard, not by transport state.
type RecoveryService struct {
	coord    *ResetCoordinator
	registry ports.EnvironmentRegistry
	gateway  ports.PlatformGateway
	log      zerolog.Logger
}

func NewRecoveryService(
	coord *ResetCoordinator,
	registry ports.EnvironmentRegistry,
	gateway ports.PlatformGateway,
	log zerolog.Logger,
) *RecoveryService {
	return &RecoveryService{
		coord:    coord,
		registry: registry,
		gateway:  gateway,
		log:      log,
	}
}

// SubmitReset runs environment selection and fan-out submission for one
// recovery request.
func (s *RecoveryService) SubmitReset(ctx context.Context, in ports.SubmitResetInput) (*domain.DispatchSummary, error) {
	session := s.coord.NewSession()
	if err := session.ChooseEnvironments(ctx, in.EnvironmentIDs); err != nil {
		return nil, err
	}
	return session.Submit(ctx, in.Identifier)
}

// ValidateToken checks a token supplied out-of-band against its environment.
func (s *RecoveryService) ValidateToken(ctx context.Context, in ports.ValidateTokenInput) (*ports.TokenValidation, error) {
	env, err := s.registry.Resolve(ctx, in.EnvironmentID)
	if err != nil {
		return nil, err
	}

	session := s.coord.ResumeSession(env)
	result, err := session.ProvideToken(ctx, in.EnvironmentID, in.TokenValue)
	if err != nil {
		return nil, err
	}

	return &ports.TokenValidation{
		Valid:   result.Valid,
		Reason:  result.Reason,
		Context: result.Context,
	}, nil
}

// ChangeCredential validates the token and, only on a Valid observation,
// commits the new credential. Validate-then-change is strictly ordered.
func (s *RecoveryService) ChangeCredential(ctx context.Context, in ports.ChangeCredentialInput) (*ports.CredentialChange, error) {
	env, err := s.registry.Resolve(ctx, in.EnvironmentID)
	if err != nil {
		return nil, err
	}

	session := s.coord.ResumeSession(env)
	check, err := session.ProvideToken(ctx, in.EnvironmentID, in.TokenValue)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		return nil, check.Reason.FailureError()
	}

	result, err := session.ChangeCredential(ctx, in.NewCredential)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return &ports.CredentialChange{Success: false, Message: result.Message}, domain.ErrCredentialChangeFailed
	}

	return &ports.CredentialChange{
		Success:      true,
		Message:      result.Message,
		RedirectHint: result.RedirectHint,
	}, nil
}

// FindAccount is the admin-only identifier lookup. Unlike the reset request
// it reveals account existence, so every call is audited as sensitive.
func (s *RecoveryService) FindAccount(ctx context.Context, in ports.AccountLookupInput) (*ports.AccountDetails, error) {
	identifier := domain.RecoveryIdentifier{Email: in.Email, Username: in.Username}
	if err := identifier.Validate(); err != nil {
		return nil, err
	}

	env, err := s.registry.Resolve(ctx, in.EnvironmentID)
	if err != nil {
		return nil, err
	}

	account, err := s.gateway.FindAccount(ctx, env.BaseURL, ports.FindAccountInput{
		Email:    in.Email,
		Username: in.Username,
	})

	status := domain.AuditSuccess
	description := "account lookup"
	if err != nil {
		status = domain.AuditError
		description = fmt.Sprintf("account lookup failed: %v", err)
		metrics.AccountLookupsTotal.WithLabelValues("error").Inc()
	} else {
		metrics.AccountLookupsTotal.WithLabelValues("found").Inc()
	}
	s.coord.emit(domain.AuditEvent{
		Event:         domain.EventAccountLookup,
		Identifier:    in.Email + in.Username,
		EnvironmentID: env.ID,
		Status:        status,
		Description:   description,
	})

	if err != nil {
		return nil, err
	}
	return account, nil
}

// TestConnection probes an environment's base URL through the gateway.
func (s *RecoveryService) TestConnection(ctx context.Context, environmentID string) error {
	env, err := s.registry.Resolve(ctx, environmentID)
	if err != nil {
		return err
	}
	if err := s.gateway.TestConnection(ctx, env.BaseURL); err != nil {
		return fmt.Errorf("test connection: %w", err)
	}
	return nil
}
