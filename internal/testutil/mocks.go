package testutil

import (
	"errors"
	"time"

	"ops-console/internal/router"
	"ops-console/internal/store"
)

// MockStore is a mock implementation of store.Store for testing
type MockStore struct {
	// Operator mocks
	CreateOperatorFunc        func(username, email, password string) (*store.Operator, error)
	GetOperatorByUsernameFunc func(username string) (*store.Operator, error)
	GetOperatorByIDFunc       func(id string) (*store.Operator, error)

	// Identity binding mocks
	BindIdentityFunc  func(operatorID, iin string) (time.Time, error)
	ClearIdentityFunc func(operatorID string) error

	// End user mocks
	FindEndUserByIINFunc func(iin string) (*store.EndUser, error)
	CreateEndUserFunc    func(iin, displayName string) (*store.EndUser, error)
}

// Operator methods
func (m *MockStore) CreateOperator(username, email, password string) (*store.Operator, error) {
	if m.CreateOperatorFunc != nil {
		return m.CreateOperatorFunc(username, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) GetOperatorByUsername(username string) (*store.Operator, error) {
	if m.GetOperatorByUsernameFunc != nil {
		return m.GetOperatorByUsernameFunc(username)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) GetOperatorByID(id string) (*store.Operator, error) {
	if m.GetOperatorByIDFunc != nil {
		return m.GetOperatorByIDFunc(id)
	}
	return nil, errors.New("not implemented")
}

// Identity binding methods
func (m *MockStore) BindIdentity(operatorID, iin string) (time.Time, error) {
	if m.BindIdentityFunc != nil {
		return m.BindIdentityFunc(operatorID, iin)
	}
	return time.Time{}, errors.New("not implemented")
}

func (m *MockStore) ClearIdentity(operatorID string) error {
	if m.ClearIdentityFunc != nil {
		return m.ClearIdentityFunc(operatorID)
	}
	return errors.New("not implemented")
}

// End user methods
func (m *MockStore) FindEndUserByIIN(iin string) (*store.EndUser, error) {
	if m.FindEndUserByIINFunc != nil {
		return m.FindEndUserByIINFunc(iin)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) CreateEndUser(iin, displayName string) (*store.EndUser, error) {
	if m.CreateEndUserFunc != nil {
		return m.CreateEndUserFunc(iin, displayName)
	}
	return nil, errors.New("not implemented")
}

// MockRouterClient is a mock implementation of router.Client for testing
type MockRouterClient struct {
	SendMessageFunc func(req router.ChatRequest) ([]byte, error)
}

func (m *MockRouterClient) SendMessage(req router.ChatRequest) ([]byte, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(req)
	}
	return nil, errors.New("not implemented")
}
