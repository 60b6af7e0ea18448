package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ops-console/internal/auth"
	"ops-console/internal/service/identity"
	"ops-console/internal/service/session"
)

// ErrorResponse is the standard JSON error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ConsoleHandlers serves the identity-link and chat-session endpoints
type ConsoleHandlers struct {
	identity *identity.Service
	sessions *session.Manager
}

// NewConsoleHandlers creates new ConsoleHandlers
func NewConsoleHandlers(identityService *identity.Service, sessionManager *session.Manager) *ConsoleHandlers {
	return &ConsoleHandlers{
		identity: identityService,
		sessions: sessionManager,
	}
}

// sendError sends a standardized JSON error response
func (ch *ConsoleHandlers) sendError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := ErrorResponse{
		Code:    status,
		Message: message,
	}
	if err != nil {
		errResp.Error = err.Error()
	}
	json.NewEncoder(w).Encode(errResp)
}

// sendJSON writes a JSON response with the given status
func (ch *ConsoleHandlers) sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// operatorID extracts the authenticated operator id, failing the request when
// the middleware did not run
func (ch *ConsoleHandlers) operatorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.OperatorID(r)
	if !ok {
		ch.sendError(w, http.StatusUnauthorized, "Operator not authenticated", nil)
		return "", false
	}
	return id, true
}

// identityErrorStatus maps the identity-link failure taxonomy onto HTTP codes
func identityErrorStatus(err error) int {
	switch {
	case errors.Is(err, identity.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, identity.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
