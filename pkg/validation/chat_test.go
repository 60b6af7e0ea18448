package validation

import (
	"strings"
	"testing"
)

func TestChatRequestValidator_ValidateMessage(t *testing.T) {
	validator := NewChatRequestValidator()

	tests := []struct {
		name    string
		message string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid message",
			message: "Hello, world!",
			wantErr: false,
		},
		{
			name:    "message at length limit",
			message: strings.Repeat("a", 8000),
			wantErr: false,
		},
		{
			name:    "empty message",
			message: "",
			wantErr: true,
			errMsg:  "message cannot be empty",
		},
		{
			name:    "whitespace-only message",
			message: "   \t\n  ",
			wantErr: true,
			errMsg:  "message cannot be empty",
		},
		{
			name:    "message too long",
			message: strings.Repeat("a", 8001),
			wantErr: true,
			errMsg:  "message must be at most 8000 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateMessage(tt.message)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err != nil && tt.errMsg != "" {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateMessage() error = %v, want message containing %q", err, tt.errMsg)
				}
			}
		})
	}
}

func TestChatRequestValidator_ValidateProvider(t *testing.T) {
	validator := NewChatRequestValidator()

	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "smart router", provider: "smart-router", wantErr: false},
		{name: "claude", provider: "claude", wantErr: false},
		{name: "openai", provider: "openai", wantErr: false},
		{name: "gemini", provider: "gemini", wantErr: false},
		{name: "empty provider", provider: "", wantErr: true},
		{name: "unknown provider", provider: "mistral", wantErr: true},
		{name: "uppercase provider", provider: "Claude", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateProvider(tt.provider)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProvider(%q) error = %v, wantErr %v", tt.provider, err, tt.wantErr)
			}
		})
	}
}

func TestChatRequestValidator_ValidateContextMode(t *testing.T) {
	validator := NewChatRequestValidator()

	tests := []struct {
		name    string
		mode    string
		wantErr bool
	}{
		{name: "personal", mode: "personal", wantErr: false},
		{name: "work", mode: "work", wantErr: false},
		{name: "family", mode: "family", wantErr: false},
		{name: "empty mode", mode: "", wantErr: true},
		{name: "unknown mode", mode: "business", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateContextMode(tt.mode)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContextMode(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			}
		})
	}
}
