package validation

import (
	"errors"
	"fmt"
	"strings"
)

// maxMessageLength caps a single chat message sent to the routing backend
const maxMessageLength = 8000

// ChatRequestValidator validates chat-related requests
type ChatRequestValidator struct{}

// NewChatRequestValidator creates a new ChatRequestValidator
func NewChatRequestValidator() *ChatRequestValidator {
	return &ChatRequestValidator{}
}

// ValidateMessage validates a chat message
func (v *ChatRequestValidator) ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("message cannot be empty")
	}

	if len(message) > maxMessageLength {
		return fmt.Errorf("message must be at most %d characters long, got %d", maxMessageLength, len(message))
	}

	return nil
}

// ValidateProvider validates the selected provider
func (v *ChatRequestValidator) ValidateProvider(provider string) error {
	validProviders := map[string]bool{
		"smart-router": true,
		"claude":       true,
		"openai":       true,
		"gemini":       true,
	}

	if !validProviders[provider] {
		return fmt.Errorf("provider must be one of: smart-router, claude, openai, gemini; got %s", provider)
	}
	return nil
}

// ValidateContextMode validates the selected context mode
func (v *ChatRequestValidator) ValidateContextMode(mode string) error {
	validModes := map[string]bool{
		"personal": true,
		"work":     true,
		"family":   true,
	}

	if !validModes[mode] {
		return fmt.Errorf("context must be one of: personal, work, family; got %s", mode)
	}
	return nil
}
