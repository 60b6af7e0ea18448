package session

import (
	"errors"
	"sync"

	"ops-console/internal/logger"
	"ops-console/internal/router"
	"ops-console/internal/service/identity"

	"github.com/sirupsen/logrus"
)

// Manager hands out one Controller per operator, created lazily with the gate
// loaded from the operator's persisted binding. Conversation state lives only
// as long as the process; there is no cross-session persistence.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Controller

	identity *identity.Service
	router   router.Client
}

// NewManager creates a new session Manager
func NewManager(identityService *identity.Service, routerClient router.Client) *Manager {
	return &Manager{
		sessions: make(map[string]*Controller),
		identity: identityService,
		router:   routerClient,
	}
}

// Controller returns the operator's session controller, creating it on first
// use. A StoreUnavailable error from the gate load is surfaced as retryable;
// an unresolvable binding just leaves the gate unsatisfied.
func (m *Manager) Controller(operatorID string) (*Controller, error) {
	m.mu.Lock()
	if controller, ok := m.sessions[operatorID]; ok {
		m.mu.Unlock()
		return controller, nil
	}
	m.mu.Unlock()

	resolved, err := m.loadGate(operatorID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another request may have created the controller meanwhile
	if controller, ok := m.sessions[operatorID]; ok {
		return controller, nil
	}

	controller := NewController(operatorID, resolved, m.router)
	m.sessions[operatorID] = controller

	logger.Log.WithFields(logrus.Fields{
		"operator_id": operatorID,
		"gated":       resolved == nil,
	}).Info("Created chat session")

	return controller, nil
}

// RefreshIdentity reloads the operator's gate after a bind or unbind.
// A no-op when the operator has no session yet.
func (m *Manager) RefreshIdentity(operatorID string) error {
	m.mu.Lock()
	controller, ok := m.sessions[operatorID]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	resolved, err := m.loadGate(operatorID)
	if err != nil {
		return err
	}

	controller.SetIdentity(resolved)
	return nil
}

// loadGate reads the binding and resolves it to a display identity. A missing
// binding or a binding whose end-user record has since disappeared yields a
// nil identity, which keeps the session gated.
func (m *Manager) loadGate(operatorID string) (*identity.ResolvedIdentity, error) {
	binding, err := m.identity.LoadBinding(operatorID)
	if err != nil {
		return nil, err
	}
	if binding == nil {
		return nil, nil
	}

	resolved, err := m.identity.Resolve(binding.IIN)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			logger.Log.WithFields(logrus.Fields{
				"operator_id": operatorID,
				"iin":         binding.IIN,
			}).Warn("Linked identity no longer resolves; session stays gated")
			return nil, nil
		}
		return nil, err
	}

	return resolved, nil
}
