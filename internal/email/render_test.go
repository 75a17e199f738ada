package email

import (
	"strings"
	"testing"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		expected string
	}{
		{
			name:     "simple substitution",
			template: "Hello {{firstName}}!",
			vars:     map[string]string{"firstName": "Ann"},
			expected: "Hello Ann!",
		},
		{
			name:     "multiple occurrences",
			template: "{{name}} and {{name}} again",
			vars:     map[string]string{"name": "Bob"},
			expected: "Bob and Bob again",
		},
		{
			name:     "unresolved placeholder becomes empty string",
			template: "Hello {{firstName}}, welcome to {{appName}}",
			vars:     map[string]string{"appName": "FundLift"},
			expected: "Hello , welcome to FundLift",
		},
		{
			name:     "no placeholders",
			template: "static content",
			vars:     map[string]string{"unused": "x"},
			expected: "static content",
		},
		{
			name:     "whitespace inside braces",
			template: "Hello {{ firstName }}!",
			vars:     map[string]string{"firstName": "Ann"},
			expected: "Hello Ann!",
		},
		{
			name:     "double braces escape html",
			template: "{{snippet}}",
			vars:     map[string]string{"snippet": `<b>bold & "quoted"</b>`},
			expected: "&lt;b&gt;bold &amp; &#34;quoted&#34;&lt;/b&gt;",
		},
		{
			name:     "triple braces insert raw html",
			template: "{{{snippet}}}",
			vars:     map[string]string{"snippet": "<b>bold</b>"},
			expected: "<b>bold</b>",
		},
		{
			name:     "unresolved triple braces become empty string",
			template: "before {{{content}}} after",
			vars:     nil,
			expected: "before  after",
		},
		{
			name:     "nil vars",
			template: "Hello {{firstName}}",
			vars:     nil,
			expected: "Hello ",
		},
		{
			name:     "malformed placeholder left alone",
			template: "Hello {firstName} and {{first name}}",
			vars:     map[string]string{"firstName": "Ann"},
			expected: "Hello {firstName} and {{first name}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compile(tt.template, tt.vars); got != tt.expected {
				t.Errorf("Compile() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRenderer_WrapsBodyInLayout(t *testing.T) {
	r := NewRendererWithLayout("<html>{{{content}}}</html>")

	rendered := r.Render("WELCOME", "Hi {{firstName}}", "Hello {{firstName}}", map[string]string{
		"firstName": "Ann",
	})

	if rendered.HTML != "<html>Hello Ann</html>" {
		t.Errorf("HTML = %q, want %q", rendered.HTML, "<html>Hello Ann</html>")
	}
	if rendered.Subject != "Hi Ann" {
		t.Errorf("Subject = %q, want %q", rendered.Subject, "Hi Ann")
	}
	if rendered.TemplateID != "WELCOME" {
		t.Errorf("TemplateID = %q, want %q", rendered.TemplateID, "WELCOME")
	}
}

func TestRenderer_LayoutSeesSameVariables(t *testing.T) {
	r := NewRendererWithLayout("{{appName}}|{{{content}}}|{{currentYear}}")

	rendered := r.Render("WELCOME", "s", "body", map[string]string{
		"appName":     "FundLift",
		"currentYear": "2026",
	})

	if rendered.HTML != "FundLift|body|2026" {
		t.Errorf("HTML = %q, want %q", rendered.HTML, "FundLift|body|2026")
	}
}

func TestRenderer_EmptyLayoutDisablesWrapping(t *testing.T) {
	r := NewRendererWithLayout("")

	rendered := r.Render("WELCOME", "s", "Hello {{firstName}}", map[string]string{"firstName": "Ann"})

	if rendered.HTML != "Hello Ann" {
		t.Errorf("HTML = %q, want %q", rendered.HTML, "Hello Ann")
	}
}

func TestRenderer_BodyContentNotReExpanded(t *testing.T) {
	// A caller value containing placeholder syntax must be inserted verbatim,
	// not treated as a template.
	r := NewRendererWithLayout("<div>{{{content}}}</div>")

	rendered := r.Render("WELCOME", "s", "{{{note}}}", map[string]string{
		"note":    "{{secret}}",
		"secret":  "should not leak",
		"content": "caller cannot preset content",
	})

	if rendered.HTML != "<div>{{secret}}</div>" {
		t.Errorf("HTML = %q, want %q", rendered.HTML, "<div>{{secret}}</div>")
	}
}

func TestNewRenderer_LoadsEmbeddedLayout(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	rendered := r.Render("WELCOME", "s", "<p>inner</p>", map[string]string{
		"appName": "FundLift",
	})

	if !strings.Contains(rendered.HTML, "<p>inner</p>") {
		t.Error("layout should contain the compiled body")
	}
	if !strings.Contains(rendered.HTML, "FundLift") {
		t.Error("layout should resolve global variables")
	}
	if strings.Contains(rendered.HTML, "{{") {
		t.Errorf("rendered HTML should not contain unresolved placeholders: %s", rendered.HTML)
	}
}
