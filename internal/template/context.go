// Package template implements the placeholder grammar used by email
// templates: {{namespace.field}} with an optional truncation modifier
// {{namespace.field(N)}}. The same renderer serves the admin preview and the
// dispatch path, so both sides of the wire parse template content
// identically.
package template

import "time"

// RenderContext maps namespace → field → value. A fresh context is supplied
// for every render call; contexts are never cached across users.
type RenderContext map[string]map[string]string

const dateLayout = "02/01/2006"
const timeLayout = "15:04:05"

// DispatchData carries the real recipient's values used to build a dispatch
// context.
type DispatchData struct {
	FullName     string
	Email        string
	Username     string
	ResetLink    string
	ResetToken   string
	ExpiresIn    string
	SiteName     string
	SupportEmail string
	Subject      string
	Title        string
	Message      string
	Now          time.Time
}

// DispatchContext builds the context used when composing the email actually
// sent to a recipient.
func DispatchContext(d DispatchData) RenderContext {
	if d.Now.IsZero() {
		d.Now = time.Now()
	}
	return RenderContext{
		"user": {
			"fullname": d.FullName,
			"email":    d.Email,
			"username": d.Username,
		},
		"reset": {
			"link":       d.ResetLink,
			"token":      d.ResetToken,
			"expires_at": d.ExpiresIn,
		},
		"system": {
			"site_name":     d.SiteName,
			"support_email": d.SupportEmail,
		},
		"email": {
			"subject": d.Subject,
		},
		"message": {
			"title":   d.Title,
			"content": d.Message,
		},
		"date": {"current": d.Now.Format(dateLayout)},
		"time": {"current": d.Now.Format(timeLayout)},
	}
}

// PreviewContext builds the fixed demonstration context used by the admin
// template editor, so admins see realistic output without live data.
func PreviewContext(subject string, now time.Time) RenderContext {
	return DispatchContext(DispatchData{
		FullName:     "João Silva",
		Email:        "joao@exemplo.com",
		Username:     "joao.silva",
		ResetLink:    "https://exemplo.com/reset?token=abc123",
		ResetToken:   "abc123def456",
		ExpiresIn:    "24 horas",
		SiteName:     "OXYGENI - CEUMA",
		SupportEmail: "suporte@ceuma.br",
		Subject:      subject,
		Title:        "Redefinição de Senha",
		Message:      "Você solicitou a redefinição de sua senha.",
		Now:          now,
	})
}
