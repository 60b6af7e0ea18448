package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record lookup matches zero rows.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all record store operations.
// This allows for easier testing through mocking and decouples the services
// from the specific store implementation.
type Store interface {
	// Operators
	CreateOperator(username, email, password string) (*Operator, error)
	GetOperatorByUsername(username string) (*Operator, error)
	GetOperatorByID(id string) (*Operator, error)

	// Identity binding fields on the operator record
	BindIdentity(operatorID, iin string) (time.Time, error)
	ClearIdentity(operatorID string) error

	// End users
	FindEndUserByIIN(iin string) (*EndUser, error)
	CreateEndUser(iin, displayName string) (*EndUser, error)
}
