package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"ops-console/internal/logger"
	"ops-console/internal/router"
	"ops-console/internal/service/identity"
	"ops-console/internal/telemetry"
	"ops-console/pkg/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Failure taxonomy for the chat session
var (
	ErrGatingRequired = errors.New("no end-user identity is linked; link an identity before sending")
	ErrSendInFlight   = errors.New("a send is already in flight")
)

// Controller owns one operator's conversation state: the ordered message
// sequence, the selection state and the send lifecycle. All mutation goes
// through its methods; nothing else holds a reference to the message slice.
type Controller struct {
	mu sync.Mutex

	operatorID  string
	gate        *identity.ResolvedIdentity
	messages    []ChatMessage
	provider    string
	contextMode string
	selectedID  string
	pending     bool

	router    router.Client
	validator *validation.ChatRequestValidator
}

// NewController creates a Controller for one operator. resolved may be nil,
// leaving the gate unsatisfied until an identity is linked.
func NewController(operatorID string, resolved *identity.ResolvedIdentity, routerClient router.Client) *Controller {
	return &Controller{
		operatorID:  operatorID,
		gate:        resolved,
		provider:    DefaultProvider,
		contextMode: DefaultContextMode,
		router:      routerClient,
		validator:   validation.NewChatRequestValidator(),
	}
}

// SetIdentity replaces the session gate after a bind or unbind
func (c *Controller) SetIdentity(resolved *identity.ResolvedIdentity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = resolved
}

// Send runs one send lifecycle: gate check, optimistic operator append,
// exactly one outbound request, then a backend or error append. Blank input
// is a silent no-op returning (nil, nil). Failure is terminal for the send;
// the operator resends manually.
func (c *Controller) Send(text string) (*ChatMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	if err := c.validator.ValidateMessage(text); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gate == nil {
		c.mu.Unlock()
		return nil, ErrGatingRequired
	}
	if c.pending {
		c.mu.Unlock()
		return nil, ErrSendInFlight
	}

	// Optimistic append: the operator message always lands, and always
	// precedes its backend or error counterpart.
	c.append(ChatMessage{
		ID:             uuid.New().String(),
		Text:           text,
		IsFromOperator: true,
		CreatedAt:      time.Now(),
	})
	c.pending = true

	req := router.ChatRequest{
		Message:  text,
		UserID:   c.gate.UserID,
		UserName: c.gate.DisplayName,
		Provider: c.provider,
		Context:  c.contextMode,
	}
	c.mu.Unlock()

	start := time.Now()
	raw, err := c.router.SendMessage(req)
	elapsed := int(time.Since(start).Milliseconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false

	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"operator_id": c.operatorID,
			"provider":    req.Provider,
		}).WithError(err).Warn("Chat send failed")

		errorMsg := ChatMessage{
			ID:        uuid.New().String(),
			Text:      "Error: " + err.Error(),
			IsError:   true,
			CreatedAt: time.Now(),
			LatencyMs: &elapsed,
		}
		c.append(errorMsg)
		return &errorMsg, err
	}

	tel := telemetry.Normalize(raw, elapsed)

	backendMsg := ChatMessage{
		ID:        uuid.New().String(),
		Text:      telemetry.ResponseText(raw),
		CreatedAt: time.Now(),
		LatencyMs: &elapsed,
		Telemetry: &tel,
	}
	c.append(backendMsg)
	c.selectedID = backendMsg.ID

	logger.Log.WithFields(logrus.Fields{
		"operator_id": c.operatorID,
		"provider":    tel.Provider,
		"model":       tel.Model,
		"tokens":      tel.TokensTotal,
		"latency_ms":  elapsed,
	}).Info("Chat send completed")

	return &backendMsg, nil
}

// SelectProvider updates the provider for subsequent sends only
func (c *Controller) SelectProvider(provider string) error {
	if err := c.validator.ValidateProvider(provider); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = provider
	return nil
}

// SelectContextMode updates the context mode for subsequent sends only
func (c *Controller) SelectContextMode(mode string) error {
	if err := c.validator.ValidateContextMode(mode); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.contextMode = mode
	return nil
}

// SelectMessage points the telemetry inspector at a message. Only
// backend-originated non-error messages are selectable; anything else is
// silently ignored.
func (c *Controller) SelectMessage(messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.messages {
		if c.messages[i].ID != messageID {
			continue
		}
		if c.messages[i].IsFromOperator || c.messages[i].IsError {
			return
		}
		c.selectedID = messageID
		return
	}
}

// Clear empties the message sequence and resets the selection. Confirmation
// is the caller's responsibility; this operation is irreversible.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = nil
	c.selectedID = ""

	logger.Log.WithField("operator_id", c.operatorID).Info("Session messages cleared")
}

// Snapshot returns a copy of the current session state for rendering
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]ChatMessage, len(c.messages))
	copy(messages, c.messages)

	return State{
		Messages:          messages,
		Provider:          c.provider,
		ContextMode:       c.contextMode,
		SelectedMessageID: c.selectedID,
		Pending:           c.pending,
		Identity:          c.gate,
	}
}

// append assumes c.mu is held
func (c *Controller) append(msg ChatMessage) {
	c.messages = append(c.messages, msg)
}
