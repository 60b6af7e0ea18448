package store

import "time"

// Operator represents an operator account record.
// The identity-link fields (IIN, IINLinkedAt, UpdatedAt) are all nil when the
// operator is unlinked; that is the canonical unlinked state, not an error.
type Operator struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IIN          *string
	IINLinkedAt  *time.Time
	UpdatedAt    *time.Time
	CreatedAt    time.Time
}

// EndUser represents an end-user identity record.
// IIN is not guaranteed unique; lookups take the first match by creation time.
type EndUser struct {
	ID          string
	IIN         string
	DisplayName string
	CreatedAt   time.Time
}
