package domain

import (
	"errors"
	"time"
)

// TemplateCategory selects which template pool an email is composed from,
// based on the state of the target account.
type TemplateCategory string

const (
	CategoryValid       TemplateCategory = "valid"
	CategorySuspended   TemplateCategory = "suspended"
	CategoryUnconfirmed TemplateCategory = "unconfirmed"
)

// TemplateContentType distinguishes HTML bodies from plain text.
type TemplateContentType string

const (
	ContentTypeHTML TemplateContentType = "html"
	ContentTypeText TemplateContentType = "text"
)

var ErrTemplateNotFound = errors.New("template not found")
var ErrNoDefaultTemplate = errors.New("no default template for category")
var ErrInvalidTemplateCategory = errors.New("invalid template category")
var ErrInvalidTemplateContentType = errors.New("invalid template content type")

// TemplateDocument is an email template authored in the admin editor.
// Invariant: at most one document per category has IsDefault set; toggling a
// new default clears the previous one in the same operation.
type TemplateDocument struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Subject     string              `json:"subject"`
	Content     string              `json:"content"`
	ContentType TemplateContentType `json:"type"`
	Category    TemplateCategory    `json:"category"`
	IsActive    bool                `json:"isActive"`
	IsDefault   bool                `json:"isDefault"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ValidCategory reports whether c is one of the known template categories.
func ValidCategory(c TemplateCategory) bool {
	switch c {
	case CategoryValid, CategorySuspended, CategoryUnconfirmed:
		return true
	}
	return false
}

// ValidContentType reports whether t is a known template content type.
func ValidContentType(t TemplateContentType) bool {
	return t == ContentTypeHTML || t == ContentTypeText
}
