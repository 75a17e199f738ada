package email

import (
	"context"
	"fmt"
	"sort"

	"github.com/fundlift/mailroom/internal/domain"
)

// Registry resolves template IDs to definitions. The static catalog decides
// which templates exist; an optional persisted mirror supplies the editable
// subject/body and the is_active gate. With no store configured the registry
// serves from the catalog and embedded files alone.
type Registry struct {
	defs  map[string]domain.TemplateDefinition
	store domain.TemplateStore
}

// NewRegistry builds a registry from the static catalog, loading each
// template's HTML body from the embedded templates directory.
// store may be nil.
func NewRegistry(store domain.TemplateStore) (*Registry, error) {
	defs := make(map[string]domain.TemplateDefinition, len(catalog))
	for id, def := range catalog {
		body, err := templateFS.ReadFile("templates/" + def.SourceFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load template body %s: %w", def.SourceFile, err)
		}
		def.HTMLBody = string(body)
		defs[id] = def
	}

	return &Registry{defs: defs, store: store}, nil
}

// Lookup returns the usable definition for templateID, or a not-found error
// when the ID is unknown or the persisted mirror marks it inactive. Both
// preview and send call this before any rendering work.
func (r *Registry) Lookup(ctx context.Context, templateID string) (*domain.TemplateDefinition, error) {
	def, ok := r.defs[templateID]
	if !ok {
		return nil, domain.NotFound("email.lookup", "email template", templateID)
	}

	if r.store != nil {
		stored, err := r.store.Get(ctx, templateID)
		switch {
		case domain.IsCode(err, domain.ENOTFOUND):
			// Mirror not seeded yet; serve the catalog definition.
		case err != nil:
			return nil, domain.WrapError(err, domain.EINTERNAL, "email.lookup", "failed to load template")
		default:
			if !stored.IsActive {
				return nil, domain.NotFound("email.lookup", "email template", templateID)
			}
			def.SubjectPattern = stored.SubjectPattern
			def.HTMLBody = stored.HTMLBody
		}
	}

	return &def, nil
}

// IsActive reports whether templateID resolves to a usable template.
func (r *Registry) IsActive(ctx context.Context, templateID string) bool {
	_, err := r.Lookup(ctx, templateID)
	return err == nil
}

// Seed writes the catalog into the persisted mirror. Intended as a one-time
// bootstrap step; existing rows keep their is_active flag and edited content
// untouched fields are overwritten with the catalog values.
func (r *Registry) Seed(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	// Deterministic order keeps seeding logs stable.
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		def := r.defs[id]
		if err := r.store.Upsert(ctx, &def); err != nil {
			return fmt.Errorf("failed to seed template %s: %w", id, err)
		}
	}
	return nil
}

// ValidateVariables checks the caller-supplied variables against the
// template's declared required set. It is an explicit step for callers that
// want hard enforcement; Send and Preview do not invoke it.
func (r *Registry) ValidateVariables(ctx context.Context, templateID string, variables map[string]string) error {
	def, err := r.Lookup(ctx, templateID)
	if err != nil {
		return err
	}

	var verr error
	names := make([]string, 0, len(def.Variables))
	for name := range def.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !def.Variables[name].Required {
			continue
		}
		if _, ok := variables[name]; !ok {
			verr = domain.AddFieldError(verr, name,
				fmt.Sprintf("required variable missing for template %s", templateID))
		}
	}
	return verr
}
