package identity

import (
	"errors"
	"fmt"
	"time"

	"ops-console/internal/logger"
	"ops-console/internal/store"
	"ops-console/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Failure taxonomy for identity linking. InvalidFormat and NotFound are
// recovered locally by the caller; StoreUnavailable is retryable.
var (
	ErrInvalidFormat    = errors.New("identity number format is invalid")
	ErrNotFound         = errors.New("no end-user record matches the identity number")
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// Binding is the persisted operator-to-identity link
type Binding struct {
	IIN      string
	LinkedAt time.Time
}

// ResolvedIdentity is the display identity derived from an IIN lookup.
// It is recomputed on demand and never persisted.
type ResolvedIdentity struct {
	UserID      string
	DisplayName string
}

// Service maintains the one-to-one-or-zero binding between an operator and an
// end-user identity record, and resolves it to a display identity.
type Service struct {
	store     store.Store
	validator *validation.IdentityNumberValidator
}

// NewService creates a new identity link Service
func NewService(st store.Store) *Service {
	return &Service{
		store:     st,
		validator: validation.NewIdentityNumberValidator(),
	}
}

// ValidateFormat reports whether the candidate is a well-formed IIN.
// No lookup is performed.
func (s *Service) ValidateFormat(candidate string) bool {
	return s.validator.IsValid(candidate)
}

// LoadBinding reads the operator's identity binding. An absent operator record
// or absent binding fields is the normal unlinked state and returns (nil, nil).
func (s *Service) LoadBinding(operatorID string) (*Binding, error) {
	operator, err := s.store.GetOperatorByID(operatorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if operator.IIN == nil || operator.IINLinkedAt == nil {
		return nil, nil
	}

	return &Binding{
		IIN:      *operator.IIN,
		LinkedAt: *operator.IINLinkedAt,
	}, nil
}

// Resolve looks up the end-user record store by identity number, taking the
// first match if multiple exist
func (s *Service) Resolve(iin string) (*ResolvedIdentity, error) {
	user, err := s.store.FindEndUserByIIN(iin)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &ResolvedIdentity{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
	}, nil
}

// Preview validates and resolves a candidate IIN without persisting anything.
// It is the first leg of the two-step bind commit: the caller shows the
// resolved identity and asks for confirmation before calling Bind.
func (s *Service) Preview(candidate string) (*ResolvedIdentity, string, error) {
	if err := s.validator.Validate(candidate); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	iin := s.validator.Normalize(candidate)

	resolved, err := s.Resolve(iin)
	if err != nil {
		return nil, "", err
	}

	return resolved, iin, nil
}

// Bind validates the candidate, resolves the identity and persists the
// overwrite of the operator's binding with a fresh linked-at timestamp.
// Call sites must have obtained explicit confirmation first (via Preview).
func (s *Service) Bind(operatorID, candidate string) (*ResolvedIdentity, *Binding, error) {
	resolved, iin, err := s.Preview(candidate)
	if err != nil {
		return nil, nil, err
	}

	linkedAt, err := s.store.BindIdentity(operatorID, iin)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	logger.Log.WithFields(logrus.Fields{
		"operator_id": operatorID,
		"iin":         iin,
		"user_id":     resolved.UserID,
	}).Info("Operator bound to end-user identity")

	return resolved, &Binding{IIN: iin, LinkedAt: linkedAt}, nil
}

// Unbind deletes the operator's binding fields. Unbinding an already-unbound
// operator is a no-op success.
func (s *Service) Unbind(operatorID string) error {
	if err := s.store.ClearIdentity(operatorID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	logger.Log.WithField("operator_id", operatorID).Info("Operator unbound from end-user identity")

	return nil
}
