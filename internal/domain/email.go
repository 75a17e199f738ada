package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EmailStatus tracks the lifecycle of a single delivery attempt.
// An entry starts PENDING and transitions exactly once to SENT or FAILED.
type EmailStatus string

const (
	StatusPending EmailStatus = "PENDING"
	StatusSent    EmailStatus = "SENT"
	StatusFailed  EmailStatus = "FAILED"
)

// Valid reports whether s is a known email status.
func (s EmailStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed:
		return true
	}
	return false
}

// TemplateVariable declares a single variable a template understands.
type TemplateVariable struct {
	Description string
	Required    bool
}

// TemplateDefinition describes one email template: its subject pattern,
// HTML body, and the variables it accepts. The static catalog is the source
// of truth for which templates exist; a persisted mirror carries the editable
// body and the is_active flag.
type TemplateDefinition struct {
	TemplateID     string
	Name           string
	Description    string
	SubjectPattern string
	HTMLBody       string
	SourceFile     string
	Variables      map[string]TemplateVariable
	IsActive       bool
}

// RenderedEmail is the transient output of the renderer. It is produced
// fresh on every preview/send call and never persisted.
type RenderedEmail struct {
	TemplateID string `json:"template_id"`
	Subject    string `json:"subject"`
	HTML       string `json:"html"`
}

// EmailLog is the durable record of one send attempt. Cc and Bcc are stored
// as comma-joined strings (empty when absent). Variables holds the exact
// caller-supplied set, not the merged globals; it is what resend replays.
type EmailLog struct {
	ID                uuid.UUID         `json:"id"`
	To                string            `json:"to"`
	Cc                string            `json:"cc"`
	Bcc               string            `json:"bcc"`
	TemplateID        string            `json:"template_id"`
	Variables         map[string]string `json:"variables"`
	Status            EmailStatus       `json:"status"`
	ProviderMessageID string            `json:"provider_message_id,omitempty"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	UserID            string            `json:"user_id,omitempty"`
	EventID           string            `json:"event_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// SendOptions are the caller-facing inputs to a send attempt.
type SendOptions struct {
	To         string
	Cc         []string
	Bcc        []string
	TemplateID string
	Variables  map[string]string
	UserID     string
	EventID    string
}

// SendResult is returned to the caller after a successful dispatch.
type SendResult struct {
	ID                uuid.UUID   `json:"id"`
	Status            EmailStatus `json:"status"`
	ProviderMessageID string      `json:"provider_message_id"`
}

// Pagination defaults for log listing.
const (
	DefaultLogLimit  = 20
	DefaultLogOffset = 0
)

// LogFilter selects delivery log entries. Zero-valued fields are ignored.
type LogFilter struct {
	UserID     string
	TemplateID string
	EventID    string
	Status     EmailStatus
	Limit      int
	Offset     int
}

// Normalize applies the default limit/offset to unset pagination fields.
func (f LogFilter) Normalize() LogFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultLogLimit
	}
	if f.Offset < 0 {
		f.Offset = DefaultLogOffset
	}
	return f
}

// CreateLogParams are the inputs for a new PENDING delivery log entry.
type CreateLogParams struct {
	To         string
	Cc         string
	Bcc        string
	TemplateID string
	Variables  map[string]string
	UserID     string
	EventID    string
}

// EmailLogStore persists delivery log entries. The orchestrator is the only
// writer; status transitions are single-shot (PENDING to SENT or FAILED).
type EmailLogStore interface {
	// CreatePending inserts a new entry in PENDING status and returns its ID.
	CreatePending(ctx context.Context, params CreateLogParams) (uuid.UUID, error)

	// MarkSent records a successful dispatch. Returns a conflict error if the
	// entry is no longer PENDING.
	MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string) error

	// MarkFailed records a failed dispatch. Returns a conflict error if the
	// entry is no longer PENDING.
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error

	// Get returns the entry or a not-found error.
	Get(ctx context.Context, id uuid.UUID) (*EmailLog, error)

	// List returns matching entries newest-first plus the total match count.
	List(ctx context.Context, filter LogFilter) ([]EmailLog, int64, error)
}

// TemplateStore persists the editable template mirror.
type TemplateStore interface {
	// Get returns the stored template or a not-found error.
	Get(ctx context.Context, templateID string) (*TemplateDefinition, error)

	// Upsert inserts or updates a template row. Used by one-time seeding;
	// the is_active flag of an existing row is left untouched.
	Upsert(ctx context.Context, def *TemplateDefinition) error
}

// EmailService is the orchestrator contract consumed by the transport layer.
type EmailService interface {
	// Preview renders a template without sending or logging.
	Preview(ctx context.Context, templateID string, variables map[string]string) (*RenderedEmail, error)

	// Send renders, logs a PENDING entry, dispatches once, and records the
	// outcome. On transport failure the entry is marked FAILED and the
	// original error is returned.
	Send(ctx context.Context, opts SendOptions) (*SendResult, error)

	// Resend replays a prior entry's recorded inputs as a fresh send.
	// The original entry is never mutated.
	Resend(ctx context.Context, id uuid.UUID) (*SendResult, error)

	// ListLogs queries the delivery log.
	ListLogs(ctx context.Context, filter LogFilter) ([]EmailLog, int64, error)

	// ValidateVariables checks caller variables against the template's
	// declared required set. Explicit step; not invoked by Send or Preview.
	ValidateVariables(ctx context.Context, templateID string, variables map[string]string) error
}
