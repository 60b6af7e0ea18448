package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ops-console/internal/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FindEndUserByIIN looks up an end-user record by identity number, taking the
// first match by creation time. Uniqueness of IINs is not enforced at this
// layer.
func (p *PostgresStore) FindEndUserByIIN(iin string) (*EndUser, error) {
	var user EndUser
	query := `
	SELECT id, iin, display_name, created_at
	FROM end_users WHERE iin = $1
	ORDER BY created_at
	LIMIT 1
	`

	err := p.conn.QueryRow(query, iin).Scan(&user.ID, &user.IIN, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving end user: %w", err)
	}

	return &user, nil
}

// CreateEndUser creates a new end-user identity record
func (p *PostgresStore) CreateEndUser(iin, displayName string) (*EndUser, error) {
	userID := uuid.New().String()
	var createdAt time.Time

	query := `
	INSERT INTO end_users (id, iin, display_name)
	VALUES ($1, $2, $3)
	RETURNING created_at
	`

	err := p.conn.QueryRow(query, userID, iin, displayName).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("error creating end user: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"user_id": userID, "iin": iin}).Info("Created end user record")

	return &EndUser{
		ID:          userID,
		IIN:         iin,
		DisplayName: displayName,
		CreatedAt:   createdAt,
	}, nil
}

// SeedDemoEndUsers creates a pair of demo end-user records so a fresh console
// can be exercised without an external provisioning step.
func SeedDemoEndUsers(s Store) error {
	demo := []struct {
		iin  string
		name string
	}{
		{"DEMO-0000-0000-0001", "Demo User One"},
		{"DEMO-0000-0000-0002", "Demo User Two"},
	}

	for _, d := range demo {
		if _, err := s.FindEndUserByIIN(d.iin); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("error checking demo end user: %w", err)
		}

		if _, err := s.CreateEndUser(d.iin, d.name); err != nil {
			return fmt.Errorf("error seeding demo end user: %w", err)
		}
	}

	logger.Log.Info("Demo end users seeded")
	return nil
}
