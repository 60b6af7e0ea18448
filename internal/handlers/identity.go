package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

type IdentityRequest struct {
	IIN string `json:"iin"`
}

type IdentityStatusResponse struct {
	Linked      bool   `json:"linked"`
	IIN         string `json:"iin,omitempty"`
	LinkedAt    string `json:"linkedAt,omitempty"`
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type IdentityPreviewResponse struct {
	IIN         string `json:"iin"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// IdentityStatusHandler reports the operator's current binding. Unlinked is a
// normal state, not an error.
func (ch *ConsoleHandlers) IdentityStatusHandler(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := ch.operatorID(w, r)
	if !ok {
		return
	}

	binding, err := ch.identity.LoadBinding(operatorID)
	if err != nil {
		ch.sendError(w, identityErrorStatus(err), "Error loading identity binding", err)
		return
	}

	if binding == nil {
		ch.sendJSON(w, http.StatusOK, IdentityStatusResponse{Linked: false})
		return
	}

	resp := IdentityStatusResponse{
		Linked:   true,
		IIN:      binding.IIN,
		LinkedAt: binding.LinkedAt.Format(time.RFC3339),
	}

	// A binding whose end-user record has disappeared still reports as linked;
	// the display identity is just absent.
	if resolved, err := ch.identity.Resolve(binding.IIN); err == nil {
		resp.UserID = resolved.UserID
		resp.DisplayName = resolved.DisplayName
	}

	ch.sendJSON(w, http.StatusOK, resp)
}

// PreviewIdentityHandler resolves a candidate IIN without persisting anything.
// The UI shows the result and asks for confirmation before linking.
func (ch *ConsoleHandlers) PreviewIdentityHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := ch.operatorID(w, r); !ok {
		return
	}

	var req IdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resolved, iin, err := ch.identity.Preview(req.IIN)
	if err != nil {
		ch.sendError(w, identityErrorStatus(err), "Could not resolve identity number", err)
		return
	}

	ch.sendJSON(w, http.StatusOK, IdentityPreviewResponse{
		IIN:         iin,
		UserID:      resolved.UserID,
		DisplayName: resolved.DisplayName,
	})
}

// LinkIdentityHandler binds the operator to the identity record. Callers are
// expected to have confirmed via the preview endpoint first.
func (ch *ConsoleHandlers) LinkIdentityHandler(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := ch.operatorID(w, r)
	if !ok {
		return
	}

	var req IdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resolved, binding, err := ch.identity.Bind(operatorID, req.IIN)
	if err != nil {
		ch.sendError(w, identityErrorStatus(err), "Could not link identity", err)
		return
	}

	if err := ch.sessions.RefreshIdentity(operatorID); err != nil {
		ch.sendError(w, identityErrorStatus(err), "Identity linked but session refresh failed", err)
		return
	}

	ch.sendJSON(w, http.StatusOK, IdentityStatusResponse{
		Linked:      true,
		IIN:         binding.IIN,
		LinkedAt:    binding.LinkedAt.Format(time.RFC3339),
		UserID:      resolved.UserID,
		DisplayName: resolved.DisplayName,
	})
}

// UnlinkIdentityHandler removes the operator's binding; idempotent
func (ch *ConsoleHandlers) UnlinkIdentityHandler(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := ch.operatorID(w, r)
	if !ok {
		return
	}

	if err := ch.identity.Unbind(operatorID); err != nil {
		ch.sendError(w, identityErrorStatus(err), "Could not unlink identity", err)
		return
	}

	if err := ch.sessions.RefreshIdentity(operatorID); err != nil {
		ch.sendError(w, identityErrorStatus(err), "Identity unlinked but session refresh failed", err)
		return
	}

	ch.sendJSON(w, http.StatusOK, IdentityStatusResponse{Linked: false})
}
