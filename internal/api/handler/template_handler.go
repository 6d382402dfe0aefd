package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
	"github.com/oxygeni/oxyrecover/internal/template"
)

// TemplateHandler handles the admin email-template editor endpoints.
type TemplateHandler struct {
	service ports.TemplateService
}

func NewTemplateHandler(service ports.TemplateService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// --- Request / Response types ---

type saveTemplateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Subject     string `json:"subject" validate:"required"`
	Content     string `json:"content" validate:"required"`
	ContentType string `json:"type" validate:"required,oneof=html text"`
	Category    string `json:"category" validate:"required,oneof=valid suspended unconfirmed"`
	IsActive    bool   `json:"is_active"`
	IsDefault   bool   `json:"is_default"`
}

type previewRequest struct {
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type templateListResponse struct {
	Templates []*domain.TemplateDocument `json:"templates"`
}

type variablesResponse struct {
	Variables []template.VariableDescriptor `json:"variables"`
}

func (r saveTemplateRequest) toInput() ports.SaveTemplateInput {
	return ports.SaveTemplateInput{
		Name:        r.Name,
		Description: r.Description,
		Subject:     r.Subject,
		Content:     r.Content,
		ContentType: domain.TemplateContentType(r.ContentType),
		Category:    domain.TemplateCategory(r.Category),
		IsActive:    r.IsActive,
		IsDefault:   r.IsDefault,
	}
}

// Create handles POST /v1/templates.
//
// @Summary      Create an email template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      saveTemplateRequest  true  "Template fields"
// @Success      201   {object}  domain.TemplateDocument
// @Failure      400   {object}  map[string]string
// @Router       /v1/templates [post]
func (h *TemplateHandler) Create(c echo.Context) error {
	var req saveTemplateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /v1/templates/:id.
//
// @Summary      Update an email template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Template id"
// @Param        body  body      saveTemplateRequest  true  "Template fields"
// @Success      200   {object}  domain.TemplateDocument
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/templates/{id} [put]
func (h *TemplateHandler) Update(c echo.Context) error {
	var req saveTemplateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/templates/:id.
//
// @Summary      Delete an email template
// @Tags         templates
// @Security     BearerAuth
// @Param        id  path  string  true  "Template id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/templates/{id} [delete]
func (h *TemplateHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/templates/:id.
//
// @Summary      Get an email template
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Template id"
// @Success      200  {object}  domain.TemplateDocument
// @Failure      404  {object}  map[string]string
// @Router       /v1/templates/{id} [get]
func (h *TemplateHandler) Get(c echo.Context) error {
	tpl, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tpl)
}

// List handles GET /v1/templates?category=&active=.
//
// @Summary      List email templates
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Filter by category (valid, suspended, unconfirmed)"
// @Param        active    query     bool    false  "Only active templates"
// @Success      200       {object}  templateListResponse
// @Failure      400       {object}  map[string]string
// @Router       /v1/templates [get]
func (h *TemplateHandler) List(c echo.Context) error {
	filter := ports.ListTemplatesFilter{
		Category:   domain.TemplateCategory(c.QueryParam("category")),
		OnlyActive: c.QueryParam("active") == "true",
	}

	templates, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, templateListResponse{Templates: templates})
}

// SetDefault handles PATCH /v1/templates/:id/default. It promotes the
// template to its category's default, demoting the previous one.
//
// @Summary      Make a template the default for its category
// @Tags         templates
// @Security     BearerAuth
// @Param        id  path  string  true  "Template id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/templates/{id}/default [patch]
func (h *TemplateHandler) SetDefault(c echo.Context) error {
	if err := h.service.SetDefault(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Preview handles POST /v1/templates/preview. It renders an unsaved
// subject/body pair against fixed demonstration data.
//
// @Summary      Preview an unsaved template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      previewRequest  true  "Subject and content to render"
// @Success      200   {object}  ports.RenderedEmail
// @Failure      400   {object}  map[string]string
// @Router       /v1/templates/preview [post]
func (h *TemplateHandler) Preview(c echo.Context) error {
	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rendered, err := h.service.Preview(c.Request().Context(), ports.PreviewInput{
		Subject: req.Subject,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rendered)
}

// Variables handles GET /v1/templates/variables.
//
// @Summary      List the placeholder variables available to templates
// @Tags         templates
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  variablesResponse
// @Router       /v1/templates/variables [get]
func (h *TemplateHandler) Variables(c echo.Context) error {
	return c.JSON(http.StatusOK, variablesResponse{Variables: h.service.Variables()})
}
