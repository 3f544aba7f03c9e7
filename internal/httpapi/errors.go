package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"smartop/fleet-service/internal/logs"
	"smartop/fleet-service/internal/policy"
	"smartop/fleet-service/internal/service"
	"smartop/fleet-service/internal/store"
	"smartop/fleet-service/internal/validate"
)

const msgStorageFailed = "database operation failed"

// errorResponse is the single error shape returned by every endpoint.
// Message is a string, or a list of field violations for validation errors.
type errorResponse struct {
	StatusCode int         `json:"statusCode"`
	Message    interface{} `json:"message"`
	Error      string      `json:"error"`
	Timestamp  string      `json:"timestamp"`
	Path       string      `json:"path"`
	Method     string      `json:"method"`
}

func mapError(err error) (int, interface{}) {
	var violations validate.Errors
	var denied *policy.DeniedError
	switch {
	case errors.As(err, &violations):
		return http.StatusBadRequest, violations.Messages()
	case errors.As(err, &denied):
		return http.StatusForbidden, denied.Reason
	case errors.Is(err, policy.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, store.ErrMachineNotFound):
		return http.StatusNotFound, "Machine not found"
	case errors.Is(err, store.ErrTemplateNotFound):
		return http.StatusNotFound, "Checklist template not found"
	case errors.Is(err, store.ErrSubmissionNotFound):
		return http.StatusNotFound, "Checklist submission not found"
	case errors.Is(err, store.ErrJobNotFound):
		return http.StatusNotFound, "Job not found"
	case errors.Is(err, store.ErrAssignmentNotFound):
		return http.StatusNotFound, "Job assignment not found"
	case errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict, "User with this email already exists in the organization"
	case errors.Is(err, store.ErrSubmissionNotPending):
		return http.StatusConflict, "Checklist submission has already been reviewed"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "Resource already exists"
	case errors.Is(err, store.ErrConstraint):
		return http.StatusBadRequest, msgStorageFailed
	case errors.Is(err, store.ErrStorage):
		return http.StatusInternalServerError, msgStorageFailed
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// respondError maps err and writes the envelope. The cause is logged but
// never returned to the caller.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)
	writeErrorCause(w, r, status, message, err)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	writeErrorCause(w, r, status, message, nil)
}

func writeErrorCause(w http.ResponseWriter, r *http.Request, status int, message interface{}, cause error) {
	resp := errorResponse{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Path:       r.URL.Path,
		Method:     r.Method,
	}

	entry := logs.Logger.WithFields(logrus.Fields{
		"status":     resp.StatusCode,
		"message":    resp.Message,
		"path":       resp.Path,
		"method":     resp.Method,
		"timestamp":  resp.Timestamp,
		"request_id": requestIDFromContext(r.Context()),
	})
	if cause != nil {
		entry = entry.WithError(cause)
	}
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
