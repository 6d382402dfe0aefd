package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

// RecoveryHandler handles HTTP requests for the reset protocol.
type RecoveryHandler struct {
	service ports.RecoveryService
}

func NewRecoveryHandler(service ports.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{service: service}
}

// --- Request / Response types ---

type resetPasswordRequest struct {
	EnvironmentIDs []string `json:"environment_ids" validate:"required,min=1"`
	Email          string   `json:"email,omitempty" validate:"omitempty,email"`
	Username       string   `json:"username,omitempty"`
}

type resetPasswordResponse struct {
	State              string                `json:"state"`
	SuccessCount       int                   `json:"success_count"`
	FailedEnvironments []string              `json:"failed_environments,omitempty"`
	Outcomes           []domain.ResetOutcome `json:"outcomes"`
	Message            string                `json:"message"`
}

type validateTokenRequest struct {
	EnvironmentID string `json:"environment_id" validate:"required"`
	Token         string `json:"token" validate:"required"`
}

type changePasswordRequest struct {
	EnvironmentID string `json:"environment_id" validate:"required"`
	Token         string `json:"token" validate:"required"`
	Password      string `json:"password" validate:"required,min=8"`
}

type findAccountRequest struct {
	EnvironmentID string `json:"environment_id" validate:"required"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Username      string `json:"username,omitempty"`
}

// ResetPassword handles POST /v1/recovery/reset-password.
//
// The response message is deliberately generic: it never reveals whether the
// identifier matched an account in any environment.
//
// @Summary      Submit a password reset request
// @Tags         recovery
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Target environments and account identifier"
// @Success      200   {object}  resetPasswordResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/recovery/reset-password [post]
func (h *RecoveryHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	summary, err := h.service.SubmitReset(c.Request().Context(), ports.SubmitResetInput{
		EnvironmentIDs: req.EnvironmentIDs,
		Identifier: domain.RecoveryIdentifier{
			Email:    req.Email,
			Username: req.Username,
		},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resetPasswordResponse{
		State:              string(summary.State),
		SuccessCount:       summary.SuccessCount,
		FailedEnvironments: summary.FailedEnvironments,
		Outcomes:           summary.Outcomes,
		Message:            "If the account exists, a recovery email has been sent.",
	})
}

// ValidateToken handles POST /v1/recovery/validate-token.
//
// @Summary      Validate a recovery token
// @Tags         recovery
// @Accept       json
// @Produce      json
// @Param        body  body      validateTokenRequest  true  "Environment and token"
// @Success      200   {object}  ports.TokenValidation
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/recovery/validate-token [post]
func (h *RecoveryHandler) ValidateToken(c echo.Context) error {
	var req validateTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	validation, err := h.service.ValidateToken(c.Request().Context(), ports.ValidateTokenInput{
		EnvironmentID: req.EnvironmentID,
		TokenValue:    req.Token,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, validation)
}

// ChangePassword handles POST /v1/recovery/change-password.
//
// @Summary      Change the account credential using a valid token
// @Tags         recovery
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Environment, token and new credential"
// @Success      200   {object}  ports.CredentialChange
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      410   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/recovery/change-password [post]
func (h *RecoveryHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	change, err := h.service.ChangeCredential(c.Request().Context(), ports.ChangeCredentialInput{
		EnvironmentID: req.EnvironmentID,
		TokenValue:    req.Token,
		NewCredential: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, change)
}

// FindAccount handles POST /v1/recovery/find-account (admin only).
//
// @Summary      Look up an account by email or username
// @Tags         recovery
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      findAccountRequest  true  "Environment and account identifier"
// @Success      200   {object}  ports.AccountDetails
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/recovery/find-account [post]
func (h *RecoveryHandler) FindAccount(c echo.Context) error {
	var req findAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.service.FindAccount(c.Request().Context(), ports.AccountLookupInput{
		EnvironmentID: req.EnvironmentID,
		Email:         req.Email,
		Username:      req.Username,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, account)
}
