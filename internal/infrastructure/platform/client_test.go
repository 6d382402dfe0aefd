package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

type memCredentials struct {
	credential string
	cleared    bool
}

func (m *memCredentials) Get(context.Context) (string, error) { return m.credential, nil }

func (m *memCredentials) Set(_ context.Context, credential string, _ bool) error {
	m.credential = credential
	return nil
}

func (m *memCredentials) Clear(context.Context) error {
	m.credential = ""
	m.cleared = true
	return nil
}

func newTestClient(directoryURL string) (*Client, *memCredentials) {
	creds := &memCredentials{}
	return NewClient(Config{DirectoryURL: directoryURL}, creds, zerolog.Nop()), creds
}

func TestClient_ListEnvironments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"urls": []map[string]string{
				{"url": "https://a.edu/"},
				{"url": "https://b.edu"},
			},
		})
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL)
	urls, err := client.ListEnvironments(context.Background())
	if err != nil {
		t.Fatalf("list environments: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://a.edu" || urls[1] != "https://b.edu" {
		t.Fatalf("unexpected urls: %v", urls)
	}
}

func TestClient_SubmitResetRequest(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "email sent"})
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL)
	result, err := client.SubmitResetRequest(context.Background(), srv.URL, ports.ResetRequestInput{Email: "joao@exemplo.com"})
	if err != nil {
		t.Fatalf("submit reset: %v", err)
	}
	if gotPath != pathResetRequest {
		t.Fatalf("path = %s, want %s", gotPath, pathResetRequest)
	}
	if gotBody["email"] != "joao@exemplo.com" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
	if _, hasUsername := gotBody["username"]; hasUsername {
		t.Fatalf("empty username must be omitted from the payload")
	}
	if !result.Success || result.Message != "email sent" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestClient_ValidateToken_FailureReasons(t *testing.T) {
	tests := []struct {
		remote string
		want   domain.TokenFailureReason
	}{
		{"expired", domain.ReasonExpired},
		{"consumed", domain.ReasonAlreadyConsumed},
		{"used", domain.ReasonAlreadyConsumed},
		{"whatever", domain.ReasonUnknown},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "reason": tt.remote})
		}))

		client, _ := newTestClient(srv.URL)
		result, err := client.ValidateToken(context.Background(), srv.URL, "tok")
		srv.Close()
		if err != nil {
			t.Fatalf("validate token: %v", err)
		}
		if result.Valid || result.Reason != tt.want {
			t.Fatalf("reason %q mapped to %+v, want %s", tt.remote, result, tt.want)
		}
	}
}

func TestClient_ValidateToken_Valid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"fullname": "João Silva"},
		})
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL)
	result, err := client.ValidateToken(context.Background(), srv.URL, "tok")
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if !result.Valid || result.Context["fullname"] != "João Silva" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestClient_FindAccount_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such user"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL)
	_, err := client.FindAccount(context.Background(), srv.URL, ports.FindAccountInput{Username: "ghost"})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestClient_AttachesAndClearsCredential(t *testing.T) {
	var gotAuth string
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client, creds := newTestClient(srv.URL)
	creds.credential = "svc-token"

	if err := client.TestConnection(context.Background(), srv.URL); err != nil {
		t.Fatalf("test connection: %v", err)
	}
	if gotAuth != "Bearer svc-token" {
		t.Fatalf("credential not attached: %q", gotAuth)
	}

	// A 401 clears the stored credential so the next call re-authenticates.
	status = http.StatusUnauthorized
	if err := client.TestConnection(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error on 401")
	}
	if !creds.cleared {
		t.Fatalf("rejected credential should be cleared")
	}
}

func TestClient_NonOKStatusCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL)
	err := client.TestConnection(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error")
	}
	var se *statusError
	if !errors.As(err, &se) || se.code != http.StatusBadGateway || se.message != "upstream down" {
		t.Fatalf("unexpected error: %v", err)
	}
}
