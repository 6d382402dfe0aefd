package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

// AuthService implements console operator registration and login.
type AuthService struct {
	repo      ports.OperatorRepository
	creds     ports.CredentialProvider
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(repo ports.OperatorRepository, creds ports.CredentialProvider, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, creds: creds, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, username, password, email, role string) (*domain.Operator, error) {
	if username == "" || password == "" || role == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if role != domain.RoleAdmin && role != domain.RoleOperator {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	op := &domain.Operator{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.repo.Create(ctx, op)
}

// Login authenticates an operator and returns a signed session token. The
// token is also handed to the credential provider: remember selects the
// long-lived storage location over the session-scoped one.
func (s *AuthService) Login(ctx context.Context, username, password string, remember bool) (string, *domain.Operator, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	op, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(op)
	if err != nil {
		return "", nil, err
	}

	if err := s.creds.Set(ctx, token, remember); err != nil {
		return "", nil, err
	}

	return token, op, nil
}

func (s *AuthService) generateToken(op *domain.Operator) (string, error) {
	claims := jwt.MapClaims{
		"username": op.Username,
		"role":     op.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
