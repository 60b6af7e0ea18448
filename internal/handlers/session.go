package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ops-console/internal/service/session"
)

type SendMessageRequest struct {
	Message string `json:"message"`
}

type SelectProviderRequest struct {
	Provider string `json:"provider"`
}

type SelectContextRequest struct {
	Context string `json:"context"`
}

type SelectMessageRequest struct {
	MessageID string `json:"messageId"`
}

type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// controller resolves the operator's session controller, handling the
// retryable gate-load failure
func (ch *ConsoleHandlers) controller(w http.ResponseWriter, r *http.Request) (*session.Controller, string, bool) {
	operatorID, ok := ch.operatorID(w, r)
	if !ok {
		return nil, "", false
	}

	controller, err := ch.sessions.Controller(operatorID)
	if err != nil {
		ch.sendError(w, identityErrorStatus(err), "Error loading chat session", err)
		return nil, "", false
	}

	return controller, operatorID, true
}

// GetSessionHandler returns a snapshot of the operator's session state
func (ch *ConsoleHandlers) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	controller, _, ok := ch.controller(w, r)
	if !ok {
		return
	}

	ch.sendJSON(w, http.StatusOK, controller.Snapshot())
}

// SendMessageHandler runs one send lifecycle. Blank input is a no-op, an
// unsatisfied gate is 412, a send already in flight is 409. A backend failure
// still returns the appended error message so the UI can render it.
func (ch *ConsoleHandlers) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	controller, _, ok := ch.controller(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	msg, err := controller.Send(req.Message)
	switch {
	case errors.Is(err, session.ErrGatingRequired):
		ch.sendError(w, http.StatusPreconditionFailed, "Link an end-user identity before sending", err)
		return
	case errors.Is(err, session.ErrSendInFlight):
		ch.sendError(w, http.StatusConflict, "A send is already in flight", err)
		return
	case err != nil && msg == nil:
		ch.sendError(w, http.StatusBadRequest, "Invalid message", err)
		return
	case msg == nil:
		// Blank input: nothing appended, no outbound request
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ch.sendJSON(w, http.StatusOK, msg)
}

// SelectProviderHandler updates the provider used for subsequent sends
func (ch *ConsoleHandlers) SelectProviderHandler(w http.ResponseWriter, r *http.Request) {
	controller, _, ok := ch.controller(w, r)
	if !ok {
		return
	}

	var req SelectProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := controller.SelectProvider(req.Provider); err != nil {
		ch.sendError(w, http.StatusBadRequest, "Invalid provider", err)
		return
	}

	ch.sendJSON(w, http.StatusOK, controller.Snapshot())
}

// SelectContextHandler updates the context mode used for subsequent sends
func (ch *ConsoleHandlers) SelectContextHandler(w http.ResponseWriter, r *http.Request) {
	controller, _, ok := ch.controller(w, r)
	if !ok {
		return
	}

	var req SelectContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := controller.SelectContextMode(req.Context); err != nil {
		ch.sendError(w, http.StatusBadRequest, "Invalid context mode", err)
		return
	}

	ch.sendJSON(w, http.StatusOK, controller.Snapshot())
}

// SelectMessageHandler points the telemetry inspector at a message.
// Ineligible targets are silently ignored, so the response is always the
// resulting state.
func (ch *ConsoleHandlers) SelectMessageHandler(w http.ResponseWriter, r *http.Request) {
	controller, _, ok := ch.controller(w, r)
	if !ok {
		return
	}

	var req SelectMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	controller.SelectMessage(req.MessageID)

	ch.sendJSON(w, http.StatusOK, controller.Snapshot())
}

// ClearMessagesHandler empties the message sequence. Destructive and
// irreversible, so the request must carry explicit confirmation.
func (ch *ConsoleHandlers) ClearMessagesHandler(w http.ResponseWriter, r *http.Request) {
	controller, _, ok := ch.controller(w, r)
	if !ok {
		return
	}

	var req ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if !req.Confirm {
		ch.sendError(w, http.StatusBadRequest, "Clearing the conversation requires confirmation", nil)
		return
	}

	controller.Clear()

	ch.sendJSON(w, http.StatusOK, controller.Snapshot())
}
