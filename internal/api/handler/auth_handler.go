package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

// AuthHandler authenticates console operators.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Role     string `json:"role" validate:"required,oneof=admin operator"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type operatorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token    string            `json:"token,omitempty"`
	Operator *operatorResponse `json:"operator,omitempty"`
}

func toOperatorResponse(op *domain.Operator) *operatorResponse {
	if op == nil {
		return nil
	}
	return &operatorResponse{
		ID:       op.ID,
		Username: op.Username,
		Email:    op.Email,
		Role:     op.Role,
	}
}

// Register creates a new console operator account.
//
// @Summary      Register a console operator
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "Operator details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	op, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.Email, req.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Operator: toOperatorResponse(op)})
}

// Login authenticates an operator and returns a signed session token. With
// remember set, the token is also stored in the long-lived credential slot.
//
// @Summary      Operator login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, op, err := h.authService.Login(c.Request().Context(), req.Username, req.Password, req.Remember)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, Operator: toOperatorResponse(op)})
}
