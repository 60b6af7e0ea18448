package store

import (
	"database/sql"
	"fmt"
	"time"

	"ops-console/internal/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// CreateOperator creates a new operator account with a hashed password
func (p *PostgresStore) CreateOperator(username, email, password string) (*Operator, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	operatorID := uuid.New().String()
	var createdAt time.Time

	query := `
	INSERT INTO operators (id, username, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
	`

	err = p.conn.QueryRow(query, operatorID, username, email, string(hashedPassword)).Scan(&operatorID, &createdAt)
	if err != nil {
		if err.Error() == "pq: duplicate key value violates unique constraint \"operators_username_key\"" {
			return nil, fmt.Errorf("username already exists")
		}
		return nil, fmt.Errorf("error creating operator: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"username": username, "operator_id": operatorID}).Info("Created new operator")

	return &Operator{
		ID:        operatorID,
		Username:  username,
		Email:     email,
		CreatedAt: createdAt,
	}, nil
}

// GetOperatorByUsername retrieves an operator by username
func (p *PostgresStore) GetOperatorByUsername(username string) (*Operator, error) {
	query := `
	SELECT id, username, email, password_hash, iin, iin_linked_at, updated_at, created_at
	FROM operators WHERE username = $1
	`
	return p.scanOperator(p.conn.QueryRow(query, username))
}

// GetOperatorByID retrieves an operator by its id
func (p *PostgresStore) GetOperatorByID(id string) (*Operator, error) {
	query := `
	SELECT id, username, email, password_hash, iin, iin_linked_at, updated_at, created_at
	FROM operators WHERE id = $1
	`
	return p.scanOperator(p.conn.QueryRow(query, id))
}

func (p *PostgresStore) scanOperator(row *sql.Row) (*Operator, error) {
	var op Operator
	err := row.Scan(&op.ID, &op.Username, &op.Email, &op.PasswordHash, &op.IIN, &op.IINLinkedAt, &op.UpdatedAt, &op.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving operator: %w", err)
	}
	return &op, nil
}

// BindIdentity overwrites the operator's identity-link fields with a fresh
// server-assigned timestamp. Binding a new identity number replaces any
// previous one.
func (p *PostgresStore) BindIdentity(operatorID, iin string) (time.Time, error) {
	var linkedAt time.Time

	query := `
	UPDATE operators
	SET iin = $2, iin_linked_at = NOW(), updated_at = NOW()
	WHERE id = $1
	RETURNING iin_linked_at
	`

	err := p.conn.QueryRow(query, operatorID, iin).Scan(&linkedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("error binding identity: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"operator_id": operatorID, "iin": iin}).Info("Bound identity to operator")

	return linkedAt, nil
}

// ClearIdentity removes the operator's identity-link fields. Clearing an
// already-unlinked operator is a no-op success.
func (p *PostgresStore) ClearIdentity(operatorID string) error {
	query := `
	UPDATE operators
	SET iin = NULL, iin_linked_at = NULL, updated_at = NULL
	WHERE id = $1
	`

	if _, err := p.conn.Exec(query, operatorID); err != nil {
		return fmt.Errorf("error clearing identity: %w", err)
	}

	logger.Log.WithField("operator_id", operatorID).Info("Cleared identity binding")

	return nil
}

// VerifyPassword checks if the provided password matches the operator's hashed password
func (o *Operator) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password))
	return err == nil
}
