package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

// AuditHandler exposes the audit trail to the admin console.
type AuditHandler struct {
	service ports.AuditService
}

func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List handles GET /v1/audit.
//
// Query parameters: search, status, date_from, date_to (RFC 3339), page, limit.
//
// @Summary      List audit entries
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        search     query     string  false  "Partial match on identifier, description or event"
// @Param        status     query     string  false  "Filter by status (success, error, pending)"
// @Param        date_from  query     string  false  "Lower bound on created_at (RFC 3339)"
// @Param        date_to    query     string  false  "Upper bound on created_at (RFC 3339)"
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Success      200        {object}  ports.AuditPage
// @Failure      400        {object}  map[string]string
// @Router       /v1/audit [get]
func (h *AuditHandler) List(c echo.Context) error {
	q := ports.AuditQuery{
		Search: c.QueryParam("search"),
		Status: domain.AuditStatus(c.QueryParam("status")),
	}

	var err error
	if q.DateFrom, err = parseTimeParam(c.QueryParam("date_from")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date_from")
	}
	if q.DateTo, err = parseTimeParam(c.QueryParam("date_to")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date_to")
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	page, err := h.service.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Get handles GET /v1/audit/:id.
//
// @Summary      Get one audit entry
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Audit entry id"
// @Success      200  {object}  domain.AuditEntry
// @Failure      404  {object}  map[string]string
// @Router       /v1/audit/{id} [get]
func (h *AuditHandler) Get(c echo.Context) error {
	entry, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// Stats handles GET /v1/audit/stats.
//
// @Summary      Aggregate audit entry counts by status
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        date_from  query     string  false  "Lower bound on created_at (RFC 3339)"
// @Param        date_to    query     string  false  "Upper bound on created_at (RFC 3339)"
// @Success      200        {object}  domain.AuditStats
// @Failure      400        {object}  map[string]string
// @Router       /v1/audit/stats [get]
func (h *AuditHandler) Stats(c echo.Context) error {
	from, err := parseTimeParam(c.QueryParam("date_from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date_from")
	}
	to, err := parseTimeParam(c.QueryParam("date_to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date_to")
	}

	stats, err := h.service.Stats(c.Request().Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func parseTimeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}
