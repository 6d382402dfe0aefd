package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/api/metrics"
	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

// ResetCoordinator sequences the recovery protocol: environment selection →
// request submission (fan-out) → token validation → credential change. It is
// the only component that causes session state transitions, and it emits one
// audit event per terminal state reached.
type ResetCoordinator struct {
	registry ports.EnvironmentRegistry
	gateway  ports.PlatformGateway
	tokens   *TokenValidator
	audit    ports.AuditSink
	log      zerolog.Logger

	// entropy backs monotonically assigned correlation ids.
	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

func NewResetCoordinator(
	registry ports.EnvironmentRegistry,
	gateway ports.PlatformGateway,
	tokens *TokenValidator,
	audit ports.AuditSink,
	log zerolog.Logger,
) *ResetCoordinator {
	return &ResetCoordinator{
		registry: registry,
		gateway:  gateway,
		tokens:   tokens,
		audit:    audit,
		log:      log,
		entropy:  ulid.Monotonic(ulid.DefaultEntropy(), 0),
	}
}

// NewSession starts a recovery session in the Idle state.
func (c *ResetCoordinator) NewSession() *ResetSession {
	return &ResetSession{coord: c, state: domain.StateIdle}
}

// ResumeSession rebuilds a session that already holds a dispatched token for
// a single environment. The token arrives out-of-band (email), so the flow
// legitimately resumes in a fresh context, already narrowed to env.
func (c *ResetCoordinator) ResumeSession(env domain.Environment) *ResetSession {
	return &ResetSession{
		coord:    c,
		state:    domain.StateAwaitingToken,
		tokenEnv: env,
	}
}

// ResetSession is one recovery flow instance. All transitions go through the
// methods below; reachable-but-invalid flag combinations cannot be
// represented.
type ResetSession struct {
	coord *ResetCoordinator

	mu           sync.Mutex
	state        domain.SessionState
	environments []domain.Environment
	identifier   domain.RecoveryIdentifier
	tokenValue   string
	tokenEnv     domain.Environment
}

// State returns the session's current state.
func (s *ResetSession) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ChooseEnvironments resolves and pins the fan-out targets. Selecting zero
// environments is a caller error, not a silent no-op.
func (s *ResetSession) ChooseEnvironments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return domain.ErrNoEnvironmentSelected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanTransitionTo(domain.StateEnvironmentChosen) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidSessionTransition, s.state, domain.StateEnvironmentChosen)
	}

	envs := make([]domain.Environment, 0, len(ids))
	for _, id := range ids {
		env, err := s.coord.registry.Resolve(ctx, id)
		if err != nil {
			return err
		}
		envs = append(envs, env)
	}

	s.environments = envs
	s.state = domain.StateEnvironmentChosen
	return nil
}

// Submit validates the identifier and fans the reset request out to every
// chosen environment concurrently, waiting for all outcomes (join semantics,
// no fail-fast). A second Submit while one is in flight is rejected.
func (s *ResetSession) Submit(ctx context.Context, identifier domain.RecoveryIdentifier) (*domain.DispatchSummary, error) {
	s.mu.Lock()
	if s.state == domain.StateSubmitting {
		s.mu.Unlock()
		return nil, domain.ErrSubmitInProgress
	}
	if !s.state.CanTransitionTo(domain.StateSubmitting) {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidSessionTransition, state, domain.StateSubmitting)
	}
	if err := identifier.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	envs := make([]domain.Environment, len(s.environments))
	copy(envs, s.environments)
	s.identifier = identifier
	s.state = domain.StateSubmitting
	s.mu.Unlock()

	outcomes := s.coord.fanOut(ctx, envs, identifier)
	summary := domain.SummarizeOutcomes(outcomes)

	s.mu.Lock()
	s.state = summary.State
	// A dispatch that reached at least one environment moves on to wait
	// for the out-of-band token.
	if summary.State != domain.StateDispatchFailed {
		s.state = domain.StateAwaitingToken
	}
	s.mu.Unlock()

	s.coord.recordDispatch(identifier, summary)
	return &summary, nil
}

// ProvideToken narrows the session to one environment and validates the
// token against it. Transport errors leave the session in AwaitingToken so
// the caller may retry; an invalid token is terminal for that token.
func (s *ResetSession) ProvideToken(ctx context.Context, environmentID, tokenValue string) (*ports.TokenCheckResult, error) {
	env, err := s.coord.registry.Resolve(ctx, environmentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.state.CanTransitionTo(domain.StateValidatingToken) {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidSessionTransition, state, domain.StateValidatingToken)
	}
	s.state = domain.StateValidatingToken
	s.mu.Unlock()

	result, err := s.coord.tokens.Validate(ctx, env, tokenValue)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Transport failure never advances the state machine.
		s.state = domain.StateAwaitingToken
		return nil, err
	}

	if !result.Valid {
		s.state = domain.StateTokenInvalid
		metrics.TokenValidationsTotal.WithLabelValues(string(result.Reason)).Inc()
		s.coord.emit(domain.AuditEvent{
			Event:         domain.EventTokenInvalid,
			Identifier:    s.identifier.Email + s.identifier.Username,
			EnvironmentID: env.ID,
			Status:        domain.AuditError,
			Description:   fmt.Sprintf("token rejected: %s", result.Reason),
		})
		return result, nil
	}

	s.state = domain.StateTokenValid
	s.tokenValue = tokenValue
	s.tokenEnv = env
	metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
	return result, nil
}

// ChangeCredential commits the new credential using the validated token.
// Requires a prior successful ProvideToken; the change is attempted exactly
// once per token and the token is marked consumed on success.
func (s *ResetSession) ChangeCredential(ctx context.Context, newCredential string) (*ports.ChangeCredentialResult, error) {
	s.mu.Lock()
	if !s.state.CanTransitionTo(domain.StateChangingCredential) {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidSessionTransition, state, domain.StateChangingCredential)
	}
	tokenValue := s.tokenValue
	env := s.tokenEnv
	s.state = domain.StateChangingCredential
	s.mu.Unlock()

	result, err := s.coord.gateway.ChangeCredential(ctx, env.BaseURL, tokenValue, newCredential)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Transport failure: back to TokenValid, caller may retry.
		s.state = domain.StateTokenValid
		return nil, fmt.Errorf("change credential: %w", err)
	}

	if !result.Success {
		s.state = domain.StateChangeFailed
		metrics.CredentialChangesTotal.WithLabelValues("failed").Inc()
		s.coord.emit(domain.AuditEvent{
			Event:         domain.EventChangeFailed,
			Identifier:    s.identifier.Email + s.identifier.Username,
			EnvironmentID: env.ID,
			Status:        domain.AuditError,
			Description:   result.Message,
		})
		return result, nil
	}

	if err := s.coord.tokens.Consume(ctx, tokenValue); err != nil {
		// The remote change went through; log loudly but do not fail the
		// caller over the marker write.
		s.coord.log.Error().Err(err).Str("environment", env.ID).Msg("failed to mark token consumed")
	}

	s.state = domain.StateComplete
	metrics.CredentialChangesTotal.WithLabelValues("success").Inc()
	s.coord.emit(domain.AuditEvent{
		Event:         domain.EventComplete,
		Identifier:    s.identifier.Email + s.identifier.Username,
		EnvironmentID: env.ID,
		Status:        domain.AuditSuccess,
		Description:   "credential changed",
	})
	return result, nil
}

// fanOut issues the reset request to every environment concurrently and
// joins all outcomes. Individual calls have no ordering guarantee; failure
// of one environment never suppresses the outcomes of the others.
func (c *ResetCoordinator) fanOut(ctx context.Context, envs []domain.Environment, identifier domain.RecoveryIdentifier) []domain.ResetOutcome {
	outcomes := make([]domain.ResetOutcome, len(envs))

	var wg sync.WaitGroup
	for i, env := range envs {
		wg.Add(1)
		go func(i int, env domain.Environment) {
			defer wg.Done()

			result, err := c.gateway.SubmitResetRequest(ctx, env.BaseURL, ports.ResetRequestInput{
				Email:    identifier.Email,
				Username: identifier.Username,
			})
			if err != nil {
				c.log.Warn().Err(err).Str("environment", env.ID).Msg("reset request failed")
				outcomes[i] = domain.ResetOutcome{EnvironmentID: env.ID, Message: "request failed"}
				metrics.FanoutRequestsTotal.WithLabelValues("error").Inc()
				return
			}
			outcomes[i] = domain.ResetOutcome{
				EnvironmentID: env.ID,
				Success:       result.Success,
				Message:       result.Message,
			}
			if result.Success {
				metrics.FanoutRequestsTotal.WithLabelValues("success").Inc()
			} else {
				metrics.FanoutRequestsTotal.WithLabelValues("rejected").Inc()
			}
		}(i, env)
	}
	wg.Wait()

	return outcomes
}

// recordDispatch emits the audit event for a settled fan-out.
func (c *ResetCoordinator) recordDispatch(identifier domain.RecoveryIdentifier, summary domain.DispatchSummary) {
	event := domain.EventDispatched
	status := domain.AuditSuccess
	description := fmt.Sprintf("reset dispatched to %d environment(s)", summary.SuccessCount)

	switch summary.State {
	case domain.StateDispatchFailed:
		event = domain.EventDispatchFailed
		status = domain.AuditError
		description = "reset dispatch failed on all environments"
	case domain.StatePartiallyDispatched:
		description = fmt.Sprintf("reset dispatched to %d environment(s), failed on: %s",
			summary.SuccessCount, strings.Join(summary.FailedEnvironments, ", "))
	}

	metrics.ResetRequestsTotal.WithLabelValues(string(summary.State)).Inc()
	c.emit(domain.AuditEvent{
		Event:         event,
		Identifier:    identifier.Email + identifier.Username,
		EnvironmentID: strings.Join(environmentIDs(summary.Outcomes), ","),
		Status:        status,
		Description:   description,
	})
}

// emit assigns the correlation id, redacts the identifier, and hands the
// event to the configured sink.
func (c *ResetCoordinator) emit(event domain.AuditEvent) {
	event.CorrelationID = c.nextCorrelationID()
	event.Identifier = domain.RedactIdentifier(event.Identifier)
	event.CreatedAt = time.Now().UTC()
	c.audit.Record(event)
}

// nextCorrelationID returns a ULID from a monotonic entropy source, so ids
// assigned by one coordinator sort in emission order.
func (c *ResetCoordinator) nextCorrelationID() string {
	c.entropyMu.Lock()
	defer c.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy).String()
}

func environmentIDs(outcomes []domain.ResetOutcome) []string {
	ids := make([]string, len(outcomes))
	for i, o := range outcomes {
		ids[i] = o.EnvironmentID
	}
	return ids
}
