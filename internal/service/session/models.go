package session

import (
	"time"

	"ops-console/internal/service/identity"
	"ops-console/internal/telemetry"
)

// Default selection for a fresh session
const (
	DefaultProvider    = "smart-router"
	DefaultContextMode = "personal"
)

// ChatMessage is one entry in the session's ordered message sequence.
// Messages are immutable once appended; a failed send produces a new error
// message rather than mutating the original.
type ChatMessage struct {
	ID             string                       `json:"id"`
	Text           string                       `json:"text"`
	IsFromOperator bool                         `json:"isFromOperator"`
	IsError        bool                         `json:"isError"`
	CreatedAt      time.Time                    `json:"createdAt"`
	LatencyMs      *int                         `json:"latencyMs,omitempty"`
	Telemetry      *telemetry.ResponseTelemetry `json:"telemetry,omitempty"`
}

// State is a synchronous snapshot of a session for rendering. The presentation
// layer re-renders from it after every accepted intent.
type State struct {
	Messages          []ChatMessage              `json:"messages"`
	Provider          string                     `json:"provider"`
	ContextMode       string                     `json:"contextMode"`
	SelectedMessageID string                     `json:"selectedMessageId,omitempty"`
	Pending           bool                       `json:"pending"`
	Identity          *identity.ResolvedIdentity `json:"identity,omitempty"`
}
