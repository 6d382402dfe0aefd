package template

import (
	"strings"
	"testing"
	"time"
)

func testContext() RenderContext {
	return RenderContext{
		"user": {
			"fullname": "João Silva",
			"email":    "joao@exemplo.com",
		},
		"reset": {
			"token": "abc123",
		},
	}
}

func TestRender_Substitution(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "simple substitution",
			template: "Hi {{user.fullname}}, token {{reset.token}}, go {{unknown.x}}",
			want:     "Hi João Silva, token abc123, go {{unknown.x}}",
		},
		{
			name:     "truncation counts runes not bytes",
			template: "{{user.fullname(5)}}",
			want:     "João ...",
		},
		{
			name:     "limit equal to length leaves value intact",
			template: "{{reset.token(6)}}",
			want:     "abc123",
		},
		{
			name:     "unknown field left verbatim",
			template: "{{user.phone}}",
			want:     "{{user.phone}}",
		},
		{
			name:     "non-numeric modifier degrades to no limit",
			template: "{{user.fullname(abc)}}",
			want:     "João Silva",
		},
		{
			name:     "zero modifier degrades to no limit",
			template: "{{user.fullname(0)}}",
			want:     "João Silva",
		},
		{
			name:     "negative modifier degrades to no limit",
			template: "{{user.fullname(-3)}}",
			want:     "João Silva",
		},
		{
			name:     "missing dot is not a placeholder",
			template: "{{userfullname}}",
			want:     "{{userfullname}}",
		},
		{
			name:     "no placeholders passes through",
			template: "plain text, no variables",
			want:     "plain text, no variables",
		},
		{
			name:     "empty template",
			template: "",
			want:     "",
		},
		{
			name:     "repeated placeholder substituted everywhere",
			template: "{{reset.token}}/{{reset.token}}",
			want:     "abc123/abc123",
		},
	}

	ctx := testContext()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.template, ctx)
			if got != tt.want {
				t.Fatalf("Render(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestRender_TruncatedLengthIsLimitPlusEllipsis(t *testing.T) {
	got := Render("{{user.fullname(5)}}", testContext())
	if n := len([]rune(got)); n != 8 {
		t.Fatalf("expected 5 runes + 3 ellipsis dots, got %d runes (%q)", n, got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected literal ellipsis suffix, got %q", got)
	}
}

func TestRender_HTMLContentIsOpaque(t *testing.T) {
	ctx := RenderContext{"reset": {"link": "https://e.com/reset?token=abc&x=1"}}
	got := Render(`<a href="{{reset.link}}">Reset</a>`, ctx)
	want := `<a href="https://e.com/reset?token=abc&x=1">Reset</a>`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolve_UnknownNamespace(t *testing.T) {
	if _, ok := Resolve(testContext(), "nope", "field", 0); ok {
		t.Fatalf("expected unresolved for unknown namespace")
	}
}

func TestResolve_Truncation(t *testing.T) {
	value, ok := Resolve(testContext(), "user", "fullname", 4)
	if !ok {
		t.Fatalf("expected resolved")
	}
	if value != "João..." {
		t.Fatalf("got %q, want %q", value, "João...")
	}
}

func TestPreviewContext_FixedSampleValues(t *testing.T) {
	now := time.Date(2025, 1, 20, 14, 30, 0, 0, time.UTC)
	ctx := PreviewContext("Redefinição de Senha", now)

	checks := map[[2]string]string{
		{"user", "fullname"}:        "João Silva",
		{"user", "email"}:           "joao@exemplo.com",
		{"system", "site_name"}:     "OXYGENI - CEUMA",
		{"system", "support_email"}: "suporte@ceuma.br",
		{"reset", "expires_at"}:     "24 horas",
		{"email", "subject"}:        "Redefinição de Senha",
		{"date", "current"}:         "20/01/2025",
		{"time", "current"}:         "14:30:00",
	}
	for key, want := range checks {
		got, ok := Resolve(ctx, key[0], key[1], 0)
		if !ok {
			t.Fatalf("%s.%s not resolvable", key[0], key[1])
		}
		if got != want {
			t.Fatalf("%s.%s = %q, want %q", key[0], key[1], got, want)
		}
	}
}

func TestCatalog_CoversDispatchContext(t *testing.T) {
	ctx := DispatchContext(DispatchData{Now: time.Now()})
	for _, v := range Catalog() {
		if _, ok := ctx[v.Category][v.Key]; !ok {
			t.Fatalf("catalog variable %s.%s missing from dispatch context", v.Category, v.Key)
		}
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	first := Catalog()
	first[0].Description = "mutated"
	if Catalog()[0].Description == "mutated" {
		t.Fatalf("Catalog must not expose internal state")
	}
}
