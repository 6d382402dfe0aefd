package domain

import (
	"errors"
	"time"
)

// SessionState represents the lifecycle state of a recovery session.
type SessionState string

const (
	StateIdle                SessionState = "idle"
	StateEnvironmentChosen   SessionState = "environment_chosen"
	StateSubmitting          SessionState = "submitting"
	StateDispatched          SessionState = "dispatched"
	StatePartiallyDispatched SessionState = "partially_dispatched"
	StateDispatchFailed      SessionState = "dispatch_failed"
	StateAwaitingToken       SessionState = "awaiting_token"
	StateValidatingToken     SessionState = "validating_token"
	StateTokenValid          SessionState = "token_valid"
	StateTokenInvalid        SessionState = "token_invalid"
	StateChangingCredential  SessionState = "changing_credential"
	StateComplete            SessionState = "complete"
	StateChangeFailed        SessionState = "change_failed"
)

// sessionTransitions defines the allowed state machine transitions.
// Re-choosing environments before submitting is allowed; everything after
// a token is produced narrows to a single environment and is strictly
// sequential.
var sessionTransitions = map[SessionState][]SessionState{
	StateIdle:                {StateEnvironmentChosen},
	StateEnvironmentChosen:   {StateEnvironmentChosen, StateSubmitting},
	StateSubmitting:          {StateDispatched, StatePartiallyDispatched, StateDispatchFailed},
	StateDispatched:          {StateAwaitingToken},
	StatePartiallyDispatched: {StateAwaitingToken},
	StateAwaitingToken:       {StateValidatingToken},
	StateValidatingToken:     {StateTokenValid, StateTokenInvalid, StateAwaitingToken},
	StateTokenValid:          {StateChangingCredential},
	StateChangingCredential:  {StateComplete, StateChangeFailed, StateTokenValid},
}

var ErrInvalidSessionTransition = errors.New("invalid session state transition")
var ErrNoEnvironmentSelected = errors.New("no environment selected")
var ErrAmbiguousIdentifier = errors.New("email and username are mutually exclusive")
var ErrMissingIdentifier = errors.New("either email or username is required")
var ErrSubmitInProgress = errors.New("a submission is already in progress")

// CanTransitionTo reports whether a transition from the current state to next is valid.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the state ends the flow for the current token.
// Terminal states require a fresh reset request to continue.
func (s SessionState) Terminal() bool {
	switch s {
	case StateDispatchFailed, StateTokenInvalid, StateComplete, StateChangeFailed:
		return true
	}
	return false
}

// RecoveryIdentifier locates an account within an environment. Exactly one
// of Email or Username must be set for a submission.
type RecoveryIdentifier struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// Validate enforces the email-XOR-username rule before any network call.
func (id RecoveryIdentifier) Validate() error {
	if id.Email != "" && id.Username != "" {
		return ErrAmbiguousIdentifier
	}
	if id.Email == "" && id.Username == "" {
		return ErrMissingIdentifier
	}
	return nil
}

// ResetRequest is one recovery submission against one environment. When the
// admin console fans out to N environments, N requests are created; none is
// ever mutated afterwards.
type ResetRequest struct {
	Identifier    RecoveryIdentifier `json:"identifier"`
	EnvironmentID string             `json:"environment_id"`
	SubmittedAt   time.Time          `json:"submitted_at"`
}

// ResetOutcome is the result of one ResetRequest against one environment.
type ResetOutcome struct {
	EnvironmentID string `json:"environment_id"`
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
}

// DispatchSummary aggregates the outcomes of a fan-out submission.
type DispatchSummary struct {
	State              SessionState   `json:"state"`
	SuccessCount       int            `json:"success_count"`
	FailedEnvironments []string       `json:"failed_environments,omitempty"`
	Outcomes           []ResetOutcome `json:"outcomes"`
}

// SummarizeOutcomes classifies a set of fan-out outcomes as Dispatched (all
// succeeded), PartiallyDispatched (mixed), or DispatchFailed (all failed).
func SummarizeOutcomes(outcomes []ResetOutcome) DispatchSummary {
	summary := DispatchSummary{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Success {
			summary.SuccessCount++
		} else {
			summary.FailedEnvironments = append(summary.FailedEnvironments, o.EnvironmentID)
		}
	}
	switch {
	case summary.SuccessCount == len(outcomes):
		summary.State = StateDispatched
	case summary.SuccessCount == 0:
		summary.State = StateDispatchFailed
	default:
		summary.State = StatePartiallyDispatched
	}
	return summary
}
