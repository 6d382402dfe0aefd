package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

type stubRecoveryService struct {
	submitFn   func(ctx context.Context, in ports.SubmitResetInput) (*domain.DispatchSummary, error)
	validateFn func(ctx context.Context, in ports.ValidateTokenInput) (*ports.TokenValidation, error)
	changeFn   func(ctx context.Context, in ports.ChangeCredentialInput) (*ports.CredentialChange, error)
	findFn     func(ctx context.Context, in ports.AccountLookupInput) (*ports.AccountDetails, error)
}

func (s *stubRecoveryService) SubmitReset(ctx context.Context, in ports.SubmitResetInput) (*domain.DispatchSummary, error) {
	return s.submitFn(ctx, in)
}

func (s *stubRecoveryService) ValidateToken(ctx context.Context, in ports.ValidateTokenInput) (*ports.TokenValidation, error) {
	return s.validateFn(ctx, in)
}

func (s *stubRecoveryService) ChangeCredential(ctx context.Context, in ports.ChangeCredentialInput) (*ports.CredentialChange, error) {
	return s.changeFn(ctx, in)
}

func (s *stubRecoveryService) FindAccount(ctx context.Context, in ports.AccountLookupInput) (*ports.AccountDetails, error) {
	return s.findFn(ctx, in)
}

func (s *stubRecoveryService) TestConnection(context.Context, string) error {
	return nil
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRecoveryHandler_ResetPassword(t *testing.T) {
	stub := &stubRecoveryService{
		submitFn: func(_ context.Context, in ports.SubmitResetInput) (*domain.DispatchSummary, error) {
			if len(in.EnvironmentIDs) != 2 || in.Identifier.Email != "joao@exemplo.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.DispatchSummary{
				State:        domain.StateDispatched,
				SuccessCount: 2,
				Outcomes: []domain.ResetOutcome{
					{EnvironmentID: "env-0", Success: true},
					{EnvironmentID: "env-1", Success: true},
				},
			}, nil
		},
	}
	h := NewRecoveryHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/recovery/reset-password",
		`{"environment_ids":["env-0","env-1"],"email":"joao@exemplo.com"}`)
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["state"] != "dispatched" || resp["success_count"] != float64(2) {
		t.Fatalf("unexpected response: %v", resp)
	}
	msg, _ := resp["message"].(string)
	if !strings.Contains(msg, "If the account exists") {
		t.Fatalf("expected the generic anti-enumeration message, got %q", msg)
	}
}

func TestRecoveryHandler_ResetPassword_MissingEnvironments(t *testing.T) {
	h := NewRecoveryHandler(&stubRecoveryService{})

	c, _ := newTestContext(t, http.MethodPost, "/v1/recovery/reset-password",
		`{"email":"joao@exemplo.com"}`)
	err := h.ResetPassword(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 validation error, got %v", err)
	}
}

func TestRecoveryHandler_ValidateToken(t *testing.T) {
	stub := &stubRecoveryService{
		validateFn: func(_ context.Context, in ports.ValidateTokenInput) (*ports.TokenValidation, error) {
			if in.EnvironmentID != "env-0" || in.TokenValue != "abc123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.TokenValidation{Valid: false, Reason: domain.ReasonExpired}, nil
		},
	}
	h := NewRecoveryHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/recovery/validate-token",
		`{"environment_id":"env-0","token":"abc123"}`)
	if err := h.ValidateToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["valid"] != false || resp["reason"] != "expired" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestRecoveryHandler_ChangePassword_ShortPassword(t *testing.T) {
	h := NewRecoveryHandler(&stubRecoveryService{})

	c, _ := newTestContext(t, http.MethodPost, "/v1/recovery/change-password",
		`{"environment_id":"env-0","token":"abc123","password":"short"}`)
	err := h.ChangePassword(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 validation error, got %v", err)
	}
}

func TestRecoveryHandler_ChangePassword_PropagatesDomainError(t *testing.T) {
	stub := &stubRecoveryService{
		changeFn: func(context.Context, ports.ChangeCredentialInput) (*ports.CredentialChange, error) {
			return nil, domain.ErrTokenConsumed
		},
	}
	h := NewRecoveryHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/recovery/change-password",
		`{"environment_id":"env-0","token":"abc123","password":"longenough"}`)
	if err := h.ChangePassword(c); !errors.Is(err, domain.ErrTokenConsumed) {
		t.Fatalf("expected ErrTokenConsumed to reach the error handler, got %v", err)
	}
}

func TestRecoveryHandler_FindAccount(t *testing.T) {
	stub := &stubRecoveryService{
		findFn: func(_ context.Context, in ports.AccountLookupInput) (*ports.AccountDetails, error) {
			return &ports.AccountDetails{ID: "42", Username: in.Username}, nil
		},
	}
	h := NewRecoveryHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/recovery/find-account",
		`{"environment_id":"env-0","username":"joao.silva"}`)
	if err := h.FindAccount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["id"] != "42" || resp["username"] != "joao.silva" {
		t.Fatalf("unexpected response: %v", resp)
	}
}
