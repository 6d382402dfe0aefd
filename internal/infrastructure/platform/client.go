// Package platform implements the outbound HTTP gateway to the remote
// learning-platform environments. All protocol logic lives behind
// ports.PlatformGateway; this package only knows how to move JSON over HTTP.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

const defaultTimeout = 30 * time.Second

// Operation paths on each environment's recovery REST surface.
const (
	pathResetRequest     = "/api/recovery/reset-password"
	pathValidateToken    = "/api/recovery/validate-token"
	pathChangeCredential = "/api/recovery/change-password"
	pathFindAccount      = "/api/recovery/find-account"
	pathPing             = "/api/ping"
)

// Config captures the settings for the platform gateway.
type Config struct {
	// DirectoryURL is the endpoint listing recoverable environment URLs.
	DirectoryURL string
	Timeout      time.Duration
}

// Client is the typed HTTP transport implementing ports.PlatformGateway.
// The service credential is attached from the injected provider, never from
// ambient storage.
type Client struct {
	http         *http.Client
	directoryURL string
	creds        ports.CredentialProvider
	log          zerolog.Logger
}

func NewClient(cfg Config, creds ports.CredentialProvider, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:         &http.Client{Timeout: timeout},
		directoryURL: strings.TrimRight(cfg.DirectoryURL, "/"),
		creds:        creds,
		log:          log,
	}
}

type environmentListing struct {
	URLs []struct {
		URL string `json:"url"`
	} `json:"urls"`
}

// ListEnvironments fetches the recoverable environment base URLs from the
// directory endpoint.
func (c *Client) ListEnvironments(ctx context.Context) ([]string, error) {
	var listing environmentListing
	if err := c.do(ctx, http.MethodGet, c.directoryURL, nil, &listing); err != nil {
		return nil, fmt.Errorf("list environments: %w", err)
	}

	urls := make([]string, 0, len(listing.URLs))
	for _, entry := range listing.URLs {
		urls = append(urls, strings.TrimRight(entry.URL, "/"))
	}
	return urls, nil
}

type resetRequestPayload struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

type resetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubmitResetRequest asks the environment to dispatch a recovery email. The
// remote operation always reports generic success regardless of whether the
// identifier exists (anti-enumeration).
func (c *Client) SubmitResetRequest(ctx context.Context, baseURL string, in ports.ResetRequestInput) (*ports.ResetRequestResult, error) {
	payload := resetRequestPayload{Email: in.Email, Username: in.Username}

	var resp resetResponse
	if err := c.do(ctx, http.MethodPost, baseURL+pathResetRequest, payload, &resp); err != nil {
		return nil, fmt.Errorf("submit reset request: %w", err)
	}
	return &ports.ResetRequestResult{Success: resp.Success, Message: resp.Message}, nil
}

type validatePayload struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Success bool              `json:"success"`
	Reason  string            `json:"reason,omitempty"`
	Message string            `json:"message,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// ValidateToken checks the token state against the environment.
func (c *Client) ValidateToken(ctx context.Context, baseURL, tokenValue string) (*ports.TokenCheckResult, error) {
	var resp validateResponse
	if err := c.do(ctx, http.MethodPost, baseURL+pathValidateToken, validatePayload{Token: tokenValue}, &resp); err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}

	if !resp.Success {
		return &ports.TokenCheckResult{Valid: false, Reason: failureReason(resp.Reason)}, nil
	}
	return &ports.TokenCheckResult{Valid: true, Context: resp.Data}, nil
}

type changePayload struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type changeResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// ChangeCredential commits the new password with the token.
func (c *Client) ChangeCredential(ctx context.Context, baseURL, tokenValue, newCredential string) (*ports.ChangeCredentialResult, error) {
	payload := changePayload{Token: tokenValue, NewPassword: newCredential}

	var resp changeResponse
	if err := c.do(ctx, http.MethodPost, baseURL+pathChangeCredential, payload, &resp); err != nil {
		return nil, fmt.Errorf("change credential: %w", err)
	}
	return &ports.ChangeCredentialResult{
		Success:      resp.Success,
		Message:      resp.Message,
		RedirectHint: resp.Redirect,
	}, nil
}

type findAccountPayload struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// FindAccount performs the admin-only identifier lookup. A 404 from the
// remote maps to domain.ErrAccountNotFound; the lookup deliberately reveals
// existence, unlike the reset request.
func (c *Client) FindAccount(ctx context.Context, baseURL string, in ports.FindAccountInput) (*ports.AccountDetails, error) {
	payload := findAccountPayload{Email: in.Email, Username: in.Username}

	var account ports.AccountDetails
	err := c.do(ctx, http.MethodPost, baseURL+pathFindAccount, payload, &account)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

// TestConnection probes the environment's ping endpoint.
func (c *Client) TestConnection(ctx context.Context, baseURL string) error {
	if err := c.do(ctx, http.MethodGet, baseURL+pathPing, nil, nil); err != nil {
		return fmt.Errorf("ping %s: %w", baseURL, err)
	}
	return nil
}

// statusError carries a non-2xx response so callers can branch on the code.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("http %d: %s", e.code, e.message)
	}
	return fmt.Sprintf("http %d", e.code)
}

// do issues one JSON request and decodes the response into out (when out is
// non-nil). The stored service credential, if any, is attached as a bearer
// token; a 401 clears it so the next call re-authenticates.
func (c *Client) do(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if credential, err := c.creds.Get(ctx); err != nil {
		c.log.Warn().Err(err).Msg("credential provider unavailable, sending unauthenticated")
	} else if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if clearErr := c.creds.Clear(ctx); clearErr != nil {
			c.log.Warn().Err(clearErr).Msg("failed to clear rejected credential")
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&envelope)
		msg := envelope.Message
		if msg == "" {
			msg = envelope.Error
		}
		return &statusError{code: resp.StatusCode, message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func failureReason(reason string) domain.TokenFailureReason {
	switch reason {
	case "expired":
		return domain.ReasonExpired
	case "consumed", "already_consumed", "used":
		return domain.ReasonAlreadyConsumed
	default:
		return domain.ReasonUnknown
	}
}
