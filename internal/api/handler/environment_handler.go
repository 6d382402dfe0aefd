package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

// EnvironmentHandler exposes the recoverable environment list.
type EnvironmentHandler struct {
	registry ports.EnvironmentRegistry
	recovery ports.RecoveryService
}

func NewEnvironmentHandler(registry ports.EnvironmentRegistry, recovery ports.RecoveryService) *EnvironmentHandler {
	return &EnvironmentHandler{registry: registry, recovery: recovery}
}

type environmentListResponse struct {
	Environments []domain.Environment `json:"environments"`
}

type testConnectionRequest struct {
	EnvironmentID string `json:"environment_id" validate:"required"`
}

type testConnectionResponse struct {
	EnvironmentID string `json:"environment_id"`
	Reachable     bool   `json:"reachable"`
	Error         string `json:"error,omitempty"`
}

// List handles GET /v1/environments.
//
// @Summary      List recoverable environments
// @Tags         environments
// @Produce      json
// @Success      200  {object}  environmentListResponse
// @Failure      502  {object}  map[string]string
// @Router       /v1/environments [get]
func (h *EnvironmentHandler) List(c echo.Context) error {
	envs, err := h.registry.Environments(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "environment directory unavailable")
	}
	return c.JSON(http.StatusOK, environmentListResponse{Environments: envs})
}

// Refresh handles POST /v1/environments/refresh (admin only). It discards the
// cached directory listing and reloads it.
//
// @Summary      Reload the environment directory
// @Tags         environments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  environmentListResponse
// @Failure      502  {object}  map[string]string
// @Router       /v1/environments/refresh [post]
func (h *EnvironmentHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.registry.Refresh(ctx); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "environment directory unavailable")
	}
	envs, err := h.registry.Environments(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "environment directory unavailable")
	}
	return c.JSON(http.StatusOK, environmentListResponse{Environments: envs})
}

// TestConnection handles POST /v1/environments/test (admin only).
//
// @Summary      Probe connectivity to one environment
// @Tags         environments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      testConnectionRequest  true  "Environment to probe"
// @Success      200   {object}  testConnectionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/environments/test [post]
func (h *EnvironmentHandler) TestConnection(c echo.Context) error {
	var req testConnectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp := testConnectionResponse{EnvironmentID: req.EnvironmentID, Reachable: true}
	if err := h.recovery.TestConnection(c.Request().Context(), req.EnvironmentID); err != nil {
		if errors.Is(err, domain.ErrEnvironmentNotFound) {
			return err
		}
		resp.Reachable = false
		resp.Error = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}
