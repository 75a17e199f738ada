package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fundlift/mailroom/internal/domain"
)

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.ENOTIMPL:
		return http.StatusNotImplemented
	case domain.EINTERNAL:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON envelope for error responses
type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// ErrorResponse writes a JSON error response derived from a domain error.
// Internal error details are never exposed to clients.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	message := domain.ErrorMessage(err)
	if code == domain.EINTERNAL {
		// Hide internal details from clients
		message = "An internal error occurred. Please try again later."
		slog.Default().Error("internal error",
			"op", domain.ErrorOp(err),
			"error", err,
			"path", r.URL.Path,
		)
	}

	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	if domain.IsValidationError(err) {
		body.Error.Fields = domain.GetValidationFields(err)
	}

	writeJSON(w, status, body)
}

// ValidationErrorResponse writes a 400 response with per-field messages.
// Falls back to ErrorResponse if err is not a validation error.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if !domain.IsValidationError(err) {
		ErrorResponse(w, r, err)
		return
	}

	var body errorBody
	body.Error.Code = domain.EINVALID
	body.Error.Message = domain.ErrorMessage(err)
	body.Error.Fields = domain.GetValidationFields(err)

	writeJSON(w, http.StatusBadRequest, body)
}

// NotFoundResponse writes a generic 404 response
func NotFoundResponse(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, r, domain.Errorf(domain.ENOTFOUND, "http", "The requested resource was not found."))
}

// InternalErrorResponse writes a generic 500 response
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	ErrorResponse(w, r, domain.WrapError(err, domain.EINTERNAL, "http", "internal error"))
}

// WriteJSON writes v as a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	writeJSON(w, status, v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}
