package email

import (
	"fmt"
	"html"
	"regexp"

	"github.com/fundlift/mailroom/internal/domain"
)

// placeholderRe matches {{{name}}} (raw) before {{name}} (escaped).
// Whitespace inside the braces is tolerated.
var placeholderRe = regexp.MustCompile(`\{\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}\}|\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Compile substitutes {{name}} placeholders in tmpl with values from vars.
// {{name}} inserts the HTML-escaped value; {{{name}}} inserts it raw.
// Unresolved placeholders become the empty string, never literal text and
// never an error. Stateless and side-effect free.
func Compile(tmpl string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := placeholderRe.FindStringSubmatch(m)
		if sub[1] != "" {
			return vars[sub[1]]
		}
		return html.EscapeString(vars[sub[2]])
	})
}

// Renderer produces final email documents via two-phase composition: the
// template body is compiled first, then injected into the shared master
// layout as the content variable. Template authors write only body content;
// the layout guarantees consistent chrome around every email.
type Renderer struct {
	layout string
}

// NewRenderer returns a renderer using the embedded master layout.
func NewRenderer() (*Renderer, error) {
	raw, err := templateFS.ReadFile(layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load master layout: %w", err)
	}
	return &Renderer{layout: string(raw)}, nil
}

// NewRendererWithLayout returns a renderer over an explicit layout document.
// An empty layout disables wrapping: the compiled body is the final document.
func NewRendererWithLayout(layout string) *Renderer {
	return &Renderer{layout: layout}
}

// Render compiles the subject pattern and HTML body against vars and wraps
// the body in the master layout. Pure function of its inputs and the fixed
// layout content.
func (r *Renderer) Render(templateID, subjectPattern, htmlBody string, vars map[string]string) *domain.RenderedEmail {
	inner := Compile(htmlBody, vars)

	finalHTML := inner
	if r.layout != "" {
		layoutVars := make(map[string]string, len(vars)+1)
		for k, v := range vars {
			layoutVars[k] = v
		}
		layoutVars["content"] = inner
		finalHTML = Compile(r.layout, layoutVars)
	}

	return &domain.RenderedEmail{
		TemplateID: templateID,
		Subject:    Compile(subjectPattern, vars),
		HTML:       finalHTML,
	}
}
