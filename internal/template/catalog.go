package template

// VariableDescriptor describes one placeholder available to template
// authors. Descriptors are purely informational: they drive the editor's
// insertion modal and take no part in rendering.
type VariableDescriptor struct {
	Category    string `json:"category"`
	Key         string `json:"key"`
	Description string `json:"description"`
	Example     string `json:"example"`
	Usage       string `json:"usage"`
}

// catalog is the closed vocabulary of placeholders. Resolution is
// case-sensitive and limited to exactly these namespace/field pairs.
var catalog = []VariableDescriptor{
	{"user", "fullname", "Nome completo do usuário", "João Silva", "{{user.fullname}}"},
	{"user", "email", "E-mail do usuário", "joao@exemplo.com", "{{user.email}}"},
	{"user", "username", "Nome de usuário (login)", "joao.silva", "{{user.username}}"},
	{"reset", "link", "Link de redefinição de senha", "https://exemplo.com/reset?token=abc123", "{{reset.link}}"},
	{"reset", "token", "Token de redefinição", "abc123def456", "{{reset.token}}"},
	{"reset", "expires_at", "Validade do token", "24 horas", "{{reset.expires_at}}"},
	{"system", "site_name", "Nome do sistema", "OXYGENI - CEUMA", "{{system.site_name}}"},
	{"system", "support_email", "E-mail de suporte", "suporte@ceuma.br", "{{system.support_email}}"},
	{"email", "subject", "Assunto do e-mail", "Redefinição de Senha", "{{email.subject}}"},
	{"message", "title", "Título da mensagem", "Redefinição de Senha", "{{message.title}}"},
	{"message", "content", "Conteúdo da mensagem", "Você solicitou a redefinição de sua senha.", "{{message.content}}"},
	{"date", "current", "Data atual", "20/01/2025", "{{date.current}}"},
	{"time", "current", "Hora atual", "14:30:00", "{{time.current}}"},
}

// Catalog returns the descriptor list for every available placeholder.
func Catalog() []VariableDescriptor {
	out := make([]VariableDescriptor, len(catalog))
	copy(out, catalog)
	return out
}
