package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrEnvironmentNotFound):
		return http.StatusNotFound, "environment not found"
	case errors.Is(err, domain.ErrNoEnvironmentSelected),
		errors.Is(err, domain.ErrMissingIdentifier),
		errors.Is(err, domain.ErrAmbiguousIdentifier):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrSubmitInProgress):
		return http.StatusConflict, "a submission is already in progress"
	case errors.Is(err, domain.ErrInvalidSessionTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusGone, "token expired"
	case errors.Is(err, domain.ErrTokenConsumed):
		return http.StatusConflict, "token already used"
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnprocessableEntity, "token invalid"
	case errors.Is(err, domain.ErrCredentialChangeFailed):
		return http.StatusUnprocessableEntity, "credential change rejected"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrOperatorExists):
		return http.StatusConflict, "operator already exists"
	case errors.Is(err, domain.ErrOperatorNotFound):
		return http.StatusNotFound, "operator not found"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound, "template not found"
	case errors.Is(err, domain.ErrNoDefaultTemplate):
		return http.StatusNotFound, "no default template for category"
	case errors.Is(err, domain.ErrAuditEntryNotFound):
		return http.StatusNotFound, "audit entry not found"
	case errors.Is(err, domain.ErrInvalidTemplateCategory),
		errors.Is(err, domain.ErrInvalidTemplateContentType):
		return http.StatusBadRequest, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
