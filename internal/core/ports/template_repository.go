package ports

import (
	"context"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
)

// ListTemplatesFilter narrows template listings.
type ListTemplatesFilter struct {
	Category   domain.TemplateCategory // optional
	OnlyActive bool
}

// TemplateRepository defines persistence operations for email templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *domain.TemplateDocument) (*domain.TemplateDocument, error)
	Update(ctx context.Context, t *domain.TemplateDocument) (*domain.TemplateDocument, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.TemplateDocument, error)
	List(ctx context.Context, filter ListTemplatesFilter) ([]*domain.TemplateDocument, error)
	// FindDefault returns the active default template for the category.
	FindDefault(ctx context.Context, category domain.TemplateCategory) (*domain.TemplateDocument, error)
	// SetDefault marks the template as its category's default and clears
	// the flag on every other template of the same category.
	SetDefault(ctx context.Context, id string) error
}
