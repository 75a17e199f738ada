package email

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fundlift/mailroom/internal/domain"
	"github.com/fundlift/mailroom/internal/telemetry"
)

// Service is the email orchestrator: it ties the registry, resolver,
// renderer, delivery log store, and delivery provider together and owns the
// PENDING to SENT/FAILED lifecycle of every send attempt.
type Service struct {
	registry *Registry
	resolver *Resolver
	renderer *Renderer
	logs     domain.EmailLogStore
	sender   Sender
	logger   *slog.Logger
	metrics  *telemetry.EmailMetrics
}

// Compile-time check to ensure Service implements domain.EmailService.
var _ domain.EmailService = (*Service)(nil)

// NewService creates the orchestrator. logger and metrics may be nil.
func NewService(
	registry *Registry,
	resolver *Resolver,
	renderer *Renderer,
	logs domain.EmailLogStore,
	sender Sender,
	logger *slog.Logger,
	metrics *telemetry.EmailMetrics,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		resolver: resolver,
		renderer: renderer,
		logs:     logs,
		sender:   sender,
		logger:   logger,
		metrics:  metrics,
	}
}

// Preview renders a template without sending or logging. Side-effect free
// and safe to call repeatedly.
func (s *Service) Preview(ctx context.Context, templateID string, variables map[string]string) (*domain.RenderedEmail, error) {
	def, err := s.registry.Lookup(ctx, templateID)
	if err != nil {
		return nil, err
	}

	merged := s.resolver.Resolve(variables)
	s.metrics.EmailPreviewed(templateID)
	return s.renderer.Render(def.TemplateID, def.SubjectPattern, def.HTMLBody, merged), nil
}

// Send renders the template, creates a PENDING log entry, dispatches exactly
// once, and records the outcome. The log entry captures the caller-supplied
// variables verbatim so resend can replay them. On transport failure the
// entry is marked FAILED and the transport error is returned to the caller.
func (s *Service) Send(ctx context.Context, opts domain.SendOptions) (*domain.SendResult, error) {
	def, err := s.registry.Lookup(ctx, opts.TemplateID)
	if err != nil {
		return nil, err
	}

	merged := s.resolver.Resolve(opts.Variables)
	rendered := s.renderer.Render(def.TemplateID, def.SubjectPattern, def.HTMLBody, merged)

	entryID, err := s.logs.CreatePending(ctx, domain.CreateLogParams{
		To:         opts.To,
		Cc:         strings.Join(opts.Cc, ","),
		Bcc:        strings.Join(opts.Bcc, ","),
		TemplateID: opts.TemplateID,
		Variables:  opts.Variables,
		UserID:     opts.UserID,
		EventID:    opts.EventID,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "email.send", "failed to create delivery log entry")
	}

	msg := &Email{
		To:       []string{opts.To},
		Cc:       opts.Cc,
		Bcc:      opts.Bcc,
		Subject:  rendered.Subject,
		HTMLBody: rendered.HTML,
		TextBody: PlainText(rendered.HTML),
	}

	messageID, sendErr := s.sender.Send(ctx, msg)
	if sendErr != nil {
		s.metrics.EmailFailed(opts.TemplateID)
		s.logger.Error("email dispatch failed",
			"entry_id", entryID,
			"template_id", opts.TemplateID,
			"to", opts.To,
			"error", sendErr,
		)
		// Record the forensic FAILED row, then surface the transport error.
		// A store failure here cannot mask the dispatch outcome; it is
		// logged and the caller still sees the original error.
		if markErr := s.logs.MarkFailed(ctx, entryID, sendErr.Error()); markErr != nil {
			s.logger.Error("failed to mark delivery log entry FAILED",
				"entry_id", entryID, "error", markErr)
		}
		return nil, sendErr
	}

	if err := s.logs.MarkSent(ctx, entryID, messageID); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "email.send", "failed to mark delivery log entry SENT")
	}

	s.metrics.EmailSent(opts.TemplateID)
	s.logger.Info("email sent",
		"entry_id", entryID,
		"template_id", opts.TemplateID,
		"to", opts.To,
		"provider_message_id", messageID,
	)

	return &domain.SendResult{
		ID:                entryID,
		Status:            domain.StatusSent,
		ProviderMessageID: messageID,
	}, nil
}

// Resend replays a prior log entry's recorded inputs through Send as a
// fresh, independent attempt. A brand-new entry is created; the original is
// never mutated.
func (s *Service) Resend(ctx context.Context, id uuid.UUID) (*domain.SendResult, error) {
	entry, err := s.logs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.EmailResent(entry.TemplateID)

	return s.Send(ctx, domain.SendOptions{
		To:         entry.To,
		Cc:         splitRecipients(entry.Cc),
		Bcc:        splitRecipients(entry.Bcc),
		TemplateID: entry.TemplateID,
		Variables:  entry.Variables,
		UserID:     entry.UserID,
		EventID:    entry.EventID,
	})
}

// ListLogs queries the delivery log with the store's filter and pagination
// contract (newest-first, limit/offset defaulting to 20/0).
func (s *Service) ListLogs(ctx context.Context, filter domain.LogFilter) ([]domain.EmailLog, int64, error) {
	return s.logs.List(ctx, filter)
}

// ValidateVariables checks caller variables against the template's declared
// required set. Explicit step; Send and Preview do not call it.
func (s *Service) ValidateVariables(ctx context.Context, templateID string, variables map[string]string) error {
	return s.registry.ValidateVariables(ctx, templateID, variables)
}

// splitRecipients reverses the comma-joined storage form of cc/bcc lists.
func splitRecipients(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
