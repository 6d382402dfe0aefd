package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/api/metrics"
	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
	"github.com/oxygeni/oxyrecover/internal/template"
)

// TemplateService backs the admin template editor and composes the emails
// carrying recovery tokens.
type TemplateService struct {
	repo ports.TemplateRepository
	log  zerolog.Logger
}

func NewTemplateService(repo ports.TemplateRepository, log zerolog.Logger) *TemplateService {
	return &TemplateService{repo: repo, log: log}
}

func (s *TemplateService) Create(ctx context.Context, in ports.SaveTemplateInput) (*domain.TemplateDocument, error) {
	if err := validateTemplateInput(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &domain.TemplateDocument{
		Name:        in.Name,
		Description: in.Description,
		Subject:     in.Subject,
		Content:     in.Content,
		ContentType: in.ContentType,
		Category:    in.Category,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, err
	}

	// The default flag is only ever toggled through SetDefault so the
	// one-default-per-category invariant holds.
	if in.IsDefault {
		if err := s.repo.SetDefault(ctx, created.ID); err != nil {
			return nil, err
		}
		created.IsDefault = true
	}

	s.log.Info().Str("template_id", created.ID).Str("category", string(created.Category)).Msg("template created")
	return created, nil
}

func (s *TemplateService) Update(ctx context.Context, id string, in ports.SaveTemplateInput) (*domain.TemplateDocument, error) {
	if err := validateTemplateInput(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Description = in.Description
	existing.Subject = in.Subject
	existing.Content = in.Content
	existing.ContentType = in.ContentType
	existing.Category = in.Category
	existing.IsActive = in.IsActive
	existing.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	if in.IsDefault && !updated.IsDefault {
		if err := s.repo.SetDefault(ctx, updated.ID); err != nil {
			return nil, err
		}
		updated.IsDefault = true
	}
	return updated, nil
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *TemplateService) Get(ctx context.Context, id string) (*domain.TemplateDocument, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TemplateService) List(ctx context.Context, filter ports.ListTemplatesFilter) ([]*domain.TemplateDocument, error) {
	if filter.Category != "" && !domain.ValidCategory(filter.Category) {
		return nil, domain.ErrInvalidTemplateCategory
	}
	return s.repo.List(ctx, filter)
}

// SetDefault promotes the template to its category's default, atomically
// clearing the previous one.
func (s *TemplateService) SetDefault(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SetDefault(ctx, id)
}

// Preview renders the given subject/body against the fixed demonstration
// context so admins see realistic output without live data.
func (s *TemplateService) Preview(_ context.Context, in ports.PreviewInput) (*ports.RenderedEmail, error) {
	ctx := template.PreviewContext(in.Subject, time.Now())
	metrics.TemplateRendersTotal.WithLabelValues("preview").Inc()
	return &ports.RenderedEmail{
		Subject: template.Render(in.Subject, ctx),
		Content: template.Render(in.Content, ctx),
	}, nil
}

// Compose renders the category's active default template against the real
// recipient data. Same grammar and algorithm as Preview; only the context
// differs.
func (s *TemplateService) Compose(ctx context.Context, category domain.TemplateCategory, data template.DispatchData) (*ports.RenderedEmail, error) {
	if !domain.ValidCategory(category) {
		return nil, domain.ErrInvalidTemplateCategory
	}

	doc, err := s.repo.FindDefault(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("compose %s email: %w", category, err)
	}

	if data.Subject == "" {
		data.Subject = doc.Subject
	}
	renderCtx := template.DispatchContext(data)
	metrics.TemplateRendersTotal.WithLabelValues("dispatch").Inc()
	return &ports.RenderedEmail{
		Subject:     template.Render(doc.Subject, renderCtx),
		Content:     template.Render(doc.Content, renderCtx),
		ContentType: doc.ContentType,
	}, nil
}

// Variables returns the placeholder catalog for the editor's insertion UI.
func (s *TemplateService) Variables() []template.VariableDescriptor {
	return template.Catalog()
}

func validateTemplateInput(in ports.SaveTemplateInput) error {
	if !domain.ValidCategory(in.Category) {
		return domain.ErrInvalidTemplateCategory
	}
	if !domain.ValidContentType(in.ContentType) {
		return domain.ErrInvalidTemplateContentType
	}
	return nil
}
