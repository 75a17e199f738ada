package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundlift/mailroom/internal/domain"
)

// TemplateStore implements domain.TemplateStore using PostgreSQL. It holds
// the editable mirror of the static catalog: subject, HTML body, and the
// is_active flag gating usability.
type TemplateStore struct {
	db *pgxpool.Pool
}

// Compile-time check to ensure TemplateStore implements domain.TemplateStore.
var _ domain.TemplateStore = (*TemplateStore)(nil)

// NewTemplateStore creates a new TemplateStore instance.
func NewTemplateStore(db *pgxpool.Pool) *TemplateStore {
	return &TemplateStore{db: db}
}

// Get returns the stored template row for templateID.
func (s *TemplateStore) Get(ctx context.Context, templateID string) (*domain.TemplateDefinition, error) {
	var def domain.TemplateDefinition
	err := s.db.QueryRow(ctx, `
		SELECT template_id, name, COALESCE(description, ''), subject, html_body,
		       COALESCE(source_file, ''), is_active
		FROM email_templates
		WHERE template_id = $1`, templateID,
	).Scan(&def.TemplateID, &def.Name, &def.Description, &def.SubjectPattern,
		&def.HTMLBody, &def.SourceFile, &def.IsActive)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("template.get", "email template", templateID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load email template: %w", err)
	}
	return &def, nil
}

// Upsert inserts the template or refreshes its catalog-sourced fields.
// The is_active flag of an existing row is preserved so an operator's
// deactivation survives re-seeding.
func (s *TemplateStore) Upsert(ctx context.Context, def *domain.TemplateDefinition) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO email_templates (template_id, name, description, subject, html_body, source_file, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (template_id) DO UPDATE SET
			name        = EXCLUDED.name,
			description = EXCLUDED.description,
			subject     = EXCLUDED.subject,
			html_body   = EXCLUDED.html_body,
			source_file = EXCLUDED.source_file,
			updated_at  = now()`,
		def.TemplateID, def.Name, def.Description, def.SubjectPattern,
		def.HTMLBody, def.SourceFile, def.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert email template: %w", err)
	}
	return nil
}
