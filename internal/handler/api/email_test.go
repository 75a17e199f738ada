package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundlift/mailroom/internal/domain"
	"github.com/fundlift/mailroom/internal/router"
)

// stubEmailService is a canned domain.EmailService that records its inputs.
type stubEmailService struct {
	previewFn func(templateID string, vars map[string]string) (*domain.RenderedEmail, error)
	sendFn    func(opts domain.SendOptions) (*domain.SendResult, error)
	resendFn  func(id uuid.UUID) (*domain.SendResult, error)
	listFn    func(filter domain.LogFilter) ([]domain.EmailLog, int64, error)
	validate  func(templateID string, vars map[string]string) error

	lastFilter domain.LogFilter
}

func (s *stubEmailService) Preview(ctx context.Context, templateID string, vars map[string]string) (*domain.RenderedEmail, error) {
	return s.previewFn(templateID, vars)
}

func (s *stubEmailService) Send(ctx context.Context, opts domain.SendOptions) (*domain.SendResult, error) {
	return s.sendFn(opts)
}

func (s *stubEmailService) Resend(ctx context.Context, id uuid.UUID) (*domain.SendResult, error) {
	return s.resendFn(id)
}

func (s *stubEmailService) ListLogs(ctx context.Context, filter domain.LogFilter) ([]domain.EmailLog, int64, error) {
	s.lastFilter = filter
	if s.listFn == nil {
		return nil, 0, nil
	}
	return s.listFn(filter)
}

func (s *stubEmailService) ValidateVariables(ctx context.Context, templateID string, vars map[string]string) error {
	return s.validate(templateID, vars)
}

func newTestRouter(service domain.EmailService) *router.Router {
	r := router.New()
	NewEmailHandler(service, nil).RegisterRoutes(r)
	return r
}

func TestEmailHandler_Preview(t *testing.T) {
	service := &stubEmailService{
		previewFn: func(templateID string, vars map[string]string) (*domain.RenderedEmail, error) {
			assert.Equal(t, "WELCOME", templateID)
			assert.Equal(t, map[string]string{"firstName": "Ann"}, vars)
			return &domain.RenderedEmail{
				TemplateID: templateID,
				Subject:    "Welcome, Ann!",
				HTML:       "<html>hi</html>",
			}, nil
		},
	}
	r := newTestRouter(service)

	body := `{"templateId":"WELCOME","variables":{"firstName":"Ann"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/emails/preview", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.RenderedEmail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Welcome, Ann!", resp.Subject)
}

func TestEmailHandler_PreviewUnknownTemplate(t *testing.T) {
	service := &stubEmailService{
		previewFn: func(templateID string, vars map[string]string) (*domain.RenderedEmail, error) {
			return nil, domain.NotFound("email.lookup", "email template", templateID)
		},
	}
	r := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/emails/preview", strings.NewReader(`{"templateId":"NOPE"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmailHandler_Send(t *testing.T) {
	resultID := uuid.New()
	service := &stubEmailService{
		sendFn: func(opts domain.SendOptions) (*domain.SendResult, error) {
			assert.Equal(t, "ann@example.com", opts.To)
			assert.Equal(t, []string{"cc@example.com"}, opts.Cc)
			assert.Equal(t, "WELCOME", opts.TemplateID)
			assert.Equal(t, "user-1", opts.UserID)
			return &domain.SendResult{
				ID:                resultID,
				Status:            domain.StatusSent,
				ProviderMessageID: "m1",
			}, nil
		},
	}
	r := newTestRouter(service)

	body := `{
		"to": "ann@example.com",
		"cc": ["cc@example.com"],
		"templateId": "WELCOME",
		"variables": {"firstName": "Ann"},
		"userId": "user-1"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/emails", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.SendResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, resultID, resp.ID)
	assert.Equal(t, domain.StatusSent, resp.Status)
	assert.Equal(t, "m1", resp.ProviderMessageID)
}

func TestEmailHandler_SendValidation(t *testing.T) {
	service := &stubEmailService{
		sendFn: func(opts domain.SendOptions) (*domain.SendResult, error) {
			t.Fatal("service must not be called for invalid requests")
			return nil, nil
		},
	}
	r := newTestRouter(service)

	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{
			name:       "missing to and templateId",
			body:       `{}`,
			wantFields: []string{"to", "templateId"},
		},
		{
			name:       "malformed recipient",
			body:       `{"to":"not-an-email","templateId":"WELCOME"}`,
			wantFields: []string{"to"},
		},
		{
			name:       "malformed cc entry",
			body:       `{"to":"ann@example.com","cc":["bad"],"templateId":"WELCOME"}`,
			wantFields: []string{"cc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/emails", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Error struct {
					Code   string            `json:"code"`
					Fields map[string]string `json:"fields"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, domain.EINVALID, resp.Error.Code)
			for _, field := range tt.wantFields {
				found := false
				for key := range resp.Error.Fields {
					if strings.HasPrefix(key, field) {
						found = true
						break
					}
				}
				assert.True(t, found, "fields %v should mention %s", resp.Error.Fields, field)
			}
		})
	}
}

func TestEmailHandler_SendMalformedJSON(t *testing.T) {
	service := &stubEmailService{}
	r := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/emails", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmailHandler_Resend(t *testing.T) {
	id := uuid.New()
	service := &stubEmailService{
		resendFn: func(got uuid.UUID) (*domain.SendResult, error) {
			assert.Equal(t, id, got)
			return &domain.SendResult{
				ID:                uuid.New(),
				Status:            domain.StatusSent,
				ProviderMessageID: "m2",
			}, nil
		},
	}
	r := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/emails/"+id.String()+"/resend", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestEmailHandler_ResendInvalidID(t *testing.T) {
	service := &stubEmailService{
		resendFn: func(got uuid.UUID) (*domain.SendResult, error) {
			t.Fatal("service must not be called for an invalid id")
			return nil, nil
		},
	}
	r := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/emails/not-a-uuid/resend", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmailHandler_ListLogs(t *testing.T) {
	service := &stubEmailService{
		listFn: func(filter domain.LogFilter) ([]domain.EmailLog, int64, error) {
			return []domain.EmailLog{{To: "ann@example.com"}}, 42, nil
		},
	}
	r := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/emails?userId=user-1&status=SENT&limit=5&offset=10", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "user-1", service.lastFilter.UserID)
	assert.Equal(t, domain.StatusSent, service.lastFilter.Status)
	assert.Equal(t, 5, service.lastFilter.Limit)
	assert.Equal(t, 10, service.lastFilter.Offset)

	var resp ListLogsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.EqualValues(t, 42, resp.Total)
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, 10, resp.Offset)
	require.Len(t, resp.Items, 1)
}

func TestEmailHandler_ListLogsDefaults(t *testing.T) {
	service := &stubEmailService{}
	r := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/emails", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.DefaultLogLimit, service.lastFilter.Limit)
	assert.Equal(t, domain.DefaultLogOffset, service.lastFilter.Offset)

	// Empty result serializes as an empty array, not null
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestEmailHandler_ListLogsInvalidParams(t *testing.T) {
	service := &stubEmailService{}
	r := newTestRouter(service)

	for _, q := range []string{"status=BOGUS", "limit=abc", "offset=-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/emails?"+q, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", q)
	}
}

func TestEmailHandler_ValidateVariables(t *testing.T) {
	service := &stubEmailService{
		validate: func(templateID string, vars map[string]string) error {
			if _, ok := vars["firstName"]; !ok {
				return domain.NewValidationError("email.validate", "firstName",
					"required variable missing for template "+templateID)
			}
			return nil
		},
	}
	r := newTestRouter(service)

	t.Run("valid", func(t *testing.T) {
		body := `{"templateId":"WELCOME","variables":{"firstName":"Ann"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/emails/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"valid":true`)
	})

	t.Run("missing required variable", func(t *testing.T) {
		body := `{"templateId":"WELCOME","variables":{}}`
		req := httptest.NewRequest(http.MethodPost, "/api/emails/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Error struct {
				Fields map[string]string `json:"fields"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp.Error.Fields, "firstName")
	})
}
