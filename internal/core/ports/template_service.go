package ports

import (
	"context"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/template"
)

// SaveTemplateInput carries the editor fields for create/update.
type SaveTemplateInput struct {
	Name        string
	Description string
	Subject     string
	Content     string
	ContentType domain.TemplateContentType
	Category    domain.TemplateCategory
	IsActive    bool
	IsDefault   bool
}

// PreviewInput is an unsaved template body previewed in the editor.
type PreviewInput struct {
	Subject string
	Content string
}

// RenderedEmail is a fully substituted subject/body pair.
type RenderedEmail struct {
	Subject     string                     `json:"subject"`
	Content     string                     `json:"content"`
	ContentType domain.TemplateContentType `json:"type,omitempty"`
}

// TemplateService defines the use cases behind the admin template editor and
// the dispatch-side email composition.
type TemplateService interface {
	Create(ctx context.Context, in SaveTemplateInput) (*domain.TemplateDocument, error)
	Update(ctx context.Context, id string, in SaveTemplateInput) (*domain.TemplateDocument, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.TemplateDocument, error)
	List(ctx context.Context, filter ListTemplatesFilter) ([]*domain.TemplateDocument, error)
	SetDefault(ctx context.Context, id string) error
	// Preview renders an unsaved subject/body pair against the fixed
	// demonstration context.
	Preview(ctx context.Context, in PreviewInput) (*RenderedEmail, error)
	// Compose renders the active default template of the category against
	// the real recipient's data (dispatch mode).
	Compose(ctx context.Context, category domain.TemplateCategory, data template.DispatchData) (*RenderedEmail, error)
	// Variables returns the placeholder catalog driving the editor.
	Variables() []template.VariableDescriptor
}
