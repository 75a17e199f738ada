package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fundlift/mailroom/internal/domain"
	"github.com/fundlift/mailroom/internal/handler"
	"github.com/fundlift/mailroom/internal/router"
)

// EmailHandler exposes the email orchestrator over JSON HTTP
type EmailHandler struct {
	service  domain.EmailService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(service domain.EmailService, logger *slog.Logger) *EmailHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailHandler{
		service:  service,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes registers email routes on the router
func (h *EmailHandler) RegisterRoutes(r *router.Router) {
	r.Post("/api/emails/preview", h.Preview)
	r.Post("/api/emails", h.Send)
	r.Post("/api/emails/{id}/resend", h.Resend)
	r.Get("/api/emails", h.ListLogs)
	r.Post("/api/emails/validate", h.ValidateVariables)
}

// PreviewRequest is the body for POST /api/emails/preview
type PreviewRequest struct {
	TemplateID string            `json:"templateId" validate:"required"`
	Variables  map[string]string `json:"variables"`
}

// Preview handles POST /api/emails/preview.
// Renders the template without sending or logging.
func (h *EmailHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := h.decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	rendered, err := h.service.Preview(r.Context(), req.TemplateID, req.Variables)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, rendered)
}

// SendRequest is the body for POST /api/emails
type SendRequest struct {
	To         string            `json:"to" validate:"required,email"`
	Cc         []string          `json:"cc" validate:"omitempty,dive,email"`
	Bcc        []string          `json:"bcc" validate:"omitempty,dive,email"`
	TemplateID string            `json:"templateId" validate:"required"`
	Variables  map[string]string `json:"variables"`
	UserID     string            `json:"userId"`
	EventID    string            `json:"eventId"`
}

// Send handles POST /api/emails.
// Renders, logs, and dispatches an email in one call.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := h.decode(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	result, err := h.service.Send(r.Context(), domain.SendOptions{
		To:         req.To,
		Cc:         req.Cc,
		Bcc:        req.Bcc,
		TemplateID: req.TemplateID,
		Variables:  req.Variables,
		UserID:     req.UserID,
		EventID:    req.EventID,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusCreated, result)
}

// Resend handles POST /api/emails/{id}/resend.
// Replays a prior delivery log entry as a fresh send.
func (h *EmailHandler) Resend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("email.resend", "invalid log entry id"))
		return
	}

	result, err := h.service.Resend(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusCreated, result)
}

// ListLogsResponse is the paginated body for GET /api/emails
type ListLogsResponse struct {
	Items  []domain.EmailLog `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// ListLogs handles GET /api/emails.
// Supports userId, templateId, eventId, status, limit, and offset query
// parameters. Entries are returned newest first.
func (h *EmailHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.LogFilter{
		UserID:     q.Get("userId"),
		TemplateID: q.Get("templateId"),
		EventID:    q.Get("eventId"),
	}

	if status := q.Get("status"); status != "" {
		s := domain.EmailStatus(status)
		if !s.Valid() {
			handler.ErrorResponse(w, r, domain.Invalid("email.list", "status must be one of PENDING, SENT, FAILED"))
			return
		}
		filter.Status = s
	}

	var err error
	if filter.Limit, err = parseIntParam(q.Get("limit")); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("email.list", "limit must be a non-negative integer"))
		return
	}
	if filter.Offset, err = parseIntParam(q.Get("offset")); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("email.list", "offset must be a non-negative integer"))
		return
	}

	filter = filter.Normalize()

	items, total, err := h.service.ListLogs(r.Context(), filter)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if items == nil {
		items = []domain.EmailLog{}
	}

	handler.WriteJSON(w, http.StatusOK, ListLogsResponse{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// ValidateRequest is the body for POST /api/emails/validate
type ValidateRequest struct {
	TemplateID string            `json:"templateId" validate:"required"`
	Variables  map[string]string `json:"variables"`
}

// ValidateVariables handles POST /api/emails/validate.
// Checks caller variables against the template's declared required set.
func (h *EmailHandler) ValidateVariables(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := h.decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.service.ValidateVariables(r.Context(), req.TemplateID, req.Variables); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// decode parses the JSON body into dst and runs struct validation.
func (h *EmailHandler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalid("http.decode", "request body must be valid JSON")
	}

	if err := h.validate.Struct(dst); err != nil {
		var invalid validator.ValidationErrors
		if ok := asValidationErrors(err, &invalid); ok {
			var verr error
			for _, fe := range invalid {
				verr = domain.AddFieldError(verr, fieldName(fe), fieldMessage(fe))
			}
			return verr
		}
		return domain.Invalid("http.decode", err.Error())
	}

	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		*target = verrs
		return true
	}
	return false
}

// fieldName lowercases the first rune of the struct field name to match the
// JSON form clients submit.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return string(name[0]|0x20) + name[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fieldName(fe) + " is required"
	case "email":
		return fieldName(fe) + " must be a valid email address"
	default:
		return fieldName(fe) + " is invalid"
	}
}

func parseIntParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
