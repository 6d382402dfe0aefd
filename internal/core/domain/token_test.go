package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTokenState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from TokenState
		to   TokenState
		want bool
	}{
		{TokenUnvalidated, TokenValid, true},
		{TokenUnvalidated, TokenInvalid, true},
		{TokenValid, TokenConsumed, true},
		{TokenConsumed, TokenValid, false},
		{TokenConsumed, TokenConsumed, false},
		{TokenInvalid, TokenValid, false},
		{TokenUnvalidated, TokenConsumed, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Fatalf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTokenFailureReason_FailureError(t *testing.T) {
	tests := []struct {
		reason TokenFailureReason
		want   error
	}{
		{ReasonExpired, ErrTokenExpired},
		{ReasonAlreadyConsumed, ErrTokenConsumed},
		{ReasonUnknown, ErrTokenInvalid},
		{TokenFailureReason("anything else"), ErrTokenInvalid},
	}

	for _, tt := range tests {
		if err := tt.reason.FailureError(); !errors.Is(err, tt.want) {
			t.Fatalf("FailureError(%s) = %v, want %v", tt.reason, err, tt.want)
		}
	}
}

func TestRecoveryToken_Expired(t *testing.T) {
	now := time.Now()

	token := RecoveryToken{ExpiresAt: now.Add(time.Hour)}
	if token.Expired(now) {
		t.Fatalf("token inside window should not be expired")
	}
	if !token.Expired(now.Add(2 * time.Hour)) {
		t.Fatalf("token past window should be expired")
	}

	// Zero expiry means the remote did not report a window.
	if (RecoveryToken{}).Expired(now) {
		t.Fatalf("token without expiry must never locally expire")
	}
}

func TestRedactIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"joao@exemplo.com", "j***@exemplo.com"},
		{"joao.silva", "jo***"},
		{"ab", "a***"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RedactIdentifier(tt.in); got != tt.want {
			t.Fatalf("RedactIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	// Redacting twice must not redact further.
	once := RedactIdentifier("joao@exemplo.com")
	if twice := RedactIdentifier(once); twice != once {
		t.Fatalf("redaction not idempotent: %q -> %q", once, twice)
	}
}
