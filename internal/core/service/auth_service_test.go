package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubOperatorRepo struct {
	byUsername map[string]*domain.Operator
}

func newStubOperatorRepo() *stubOperatorRepo {
	return &stubOperatorRepo{byUsername: make(map[string]*domain.Operator)}
}

func (r *stubOperatorRepo) Create(_ context.Context, op *domain.Operator) (*domain.Operator, error) {
	if _, ok := r.byUsername[op.Username]; ok {
		return nil, domain.ErrOperatorExists
	}
	clone := *op
	clone.ID = "op-" + op.Username
	r.byUsername[op.Username] = &clone
	out := clone
	return &out, nil
}

func (r *stubOperatorRepo) FindByUsername(_ context.Context, username string) (*domain.Operator, error) {
	op, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrOperatorNotFound
	}
	clone := *op
	return &clone, nil
}

type stubCredentialStore struct {
	credential string
	remember   bool
	setCalls   int
	clearCalls int
}

func (s *stubCredentialStore) Get(context.Context) (string, error) {
	return s.credential, nil
}

func (s *stubCredentialStore) Set(_ context.Context, credential string, remember bool) error {
	s.credential = credential
	s.remember = remember
	s.setCalls++
	return nil
}

func (s *stubCredentialStore) Clear(context.Context) error {
	s.credential = ""
	s.clearCalls++
	return nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newStubOperatorRepo()
	creds := &stubCredentialStore{}
	svc := NewAuthService(repo, creds, "secret", time.Hour)
	ctx := context.Background()

	op, err := svc.Register(ctx, "alice", "s3cret-pass", "alice@ceuma.br", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if op.PasswordHash == "s3cret-pass" {
		t.Fatalf("password must be stored hashed")
	}

	token, logged, err := svc.Login(ctx, "alice", "s3cret-pass", false)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.Username != "alice" {
		t.Fatalf("unexpected operator: %+v", logged)
	}
	if creds.setCalls != 1 || creds.remember {
		t.Fatalf("session credential not stored as expected: %+v", creds)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["username"] != "alice" || claims["role"] != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestAuthService_LoginRemember(t *testing.T) {
	repo := newStubOperatorRepo()
	creds := &stubCredentialStore{}
	svc := NewAuthService(repo, creds, "secret", time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "s3cret-pass", "", domain.RoleOperator); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "bob", "s3cret-pass", true); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !creds.remember {
		t.Fatalf("remember flag should select the long-lived credential slot")
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	repo := newStubOperatorRepo()
	svc := NewAuthService(repo, &stubCredentialStore{}, "secret", time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol", "s3cret-pass", "", domain.RoleOperator); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "carol", "wrong", false); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "pass", false); !errors.Is(err, domain.ErrOperatorNotFound) {
		t.Fatalf("expected ErrOperatorNotFound, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "", "", false); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials on empty input, got %v", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(newStubOperatorRepo(), &stubCredentialStore{}, "secret", time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dave", "pass", "", "superuser"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected role rejection, got %v", err)
	}
	if _, err := svc.Register(ctx, "", "pass", "", domain.RoleAdmin); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected empty username rejection, got %v", err)
	}
}

func TestAuthService_DuplicateUsername(t *testing.T) {
	svc := NewAuthService(newStubOperatorRepo(), &stubCredentialStore{}, "secret", time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "erin", "s3cret-pass", "", domain.RoleOperator); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "erin", "other-pass", "", domain.RoleOperator); !errors.Is(err, domain.ErrOperatorExists) {
		t.Fatalf("expected ErrOperatorExists, got %v", err)
	}
}
