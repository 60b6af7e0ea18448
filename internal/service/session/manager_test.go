package session

import (
	"errors"
	"testing"
	"time"

	"ops-console/internal/router"
	"ops-console/internal/service/identity"
	"ops-console/internal/store"
	"ops-console/internal/testutil"
)

func linkedOperator(iin string) *store.Operator {
	linkedAt := time.Now()
	return &store.Operator{
		ID:          "op-1",
		Username:    "demo",
		IIN:         &iin,
		IINLinkedAt: &linkedAt,
	}
}

func okRouter() *testutil.MockRouterClient {
	return &testutil.MockRouterClient{
		SendMessageFunc: func(req router.ChatRequest) ([]byte, error) {
			return []byte(`{"response":"ok"}`), nil
		},
	}
}

func TestManager_ControllerLoadsGateFromBinding(t *testing.T) {
	mockStore := &testutil.MockStore{
		GetOperatorByIDFunc: func(id string) (*store.Operator, error) {
			return linkedOperator("ABCD-1234-EF56-7890"), nil
		},
		FindEndUserByIINFunc: func(iin string) (*store.EndUser, error) {
			return &store.EndUser{ID: "user-1", IIN: iin, DisplayName: "Jamie Doe"}, nil
		},
	}
	manager := NewManager(identity.NewService(mockStore), okRouter())

	controller, err := manager.Controller("op-1")
	if err != nil {
		t.Fatalf("Expected controller, got error %v", err)
	}

	state := controller.Snapshot()
	if state.Identity == nil {
		t.Fatal("Expected gate satisfied from persisted binding")
	}
	if state.Identity.UserID != "user-1" || state.Identity.DisplayName != "Jamie Doe" {
		t.Errorf("Unexpected resolved identity: %+v", state.Identity)
	}
}

func TestManager_ControllerIsReusedPerOperator(t *testing.T) {
	gateLoads := 0
	mockStore := &testutil.MockStore{
		GetOperatorByIDFunc: func(id string) (*store.Operator, error) {
			gateLoads++
			return &store.Operator{ID: id, Username: "demo"}, nil
		},
	}
	manager := NewManager(identity.NewService(mockStore), okRouter())

	first, err := manager.Controller("op-1")
	if err != nil {
		t.Fatalf("Expected controller, got error %v", err)
	}
	second, err := manager.Controller("op-1")
	if err != nil {
		t.Fatalf("Expected controller, got error %v", err)
	}

	if first != second {
		t.Error("Expected the same controller across requests")
	}
	if gateLoads != 1 {
		t.Errorf("Expected gate loaded once, got %d loads", gateLoads)
	}

	other, err := manager.Controller("op-2")
	if err != nil {
		t.Fatalf("Expected controller, got error %v", err)
	}
	if other == first {
		t.Error("Expected distinct controllers per operator")
	}
}

func TestManager_UnlinkedOperatorStaysGated(t *testing.T) {
	mockStore := &testutil.MockStore{
		GetOperatorByIDFunc: func(id string) (*store.Operator, error) {
			return &store.Operator{ID: id, Username: "demo"}, nil
		},
	}
	manager := NewManager(identity.NewService(mockStore), okRouter())

	controller, err := manager.Controller("op-1")
	if err != nil {
		t.Fatalf("Expected controller, got error %v", err)
	}

	if _, err := controller.Send("hello"); !errors.Is(err, ErrGatingRequired) {
		t.Errorf("Expected ErrGatingRequired for unlinked operator, got %v", err)
	}
}

func TestManager_UnresolvableBindingStaysGated(t *testing.T) {
	mockStore := &testutil.MockStore{
		GetOperatorByIDFunc: func(id string) (*store.Operator, error) {
			return linkedOperator("ABCD-1234-EF56-7890"), nil
		},
		FindEndUserByIINFunc: func(iin string) (*store.EndUser, error) {
			return nil, store.ErrNotFound
		},
	}
	manager := NewManager(identity.NewService(mockStore), okRouter())

	controller, err := manager.Controller("op-1")
	if err != nil {
		t.Fatalf("Expected a gated controller, got error %v", err)
	}
	if controller.Snapshot().Identity != nil {
		t.Error("Expected gate unsatisfied when the binding no longer resolves")
	}
}

func TestManager_StoreFailurePropagates(t *testing.T) {
	mockStore := &testutil.MockStore{
		GetOperatorByIDFunc: func(id string) (*store.Operator, error) {
			return nil, errors.New("connection refused")
		},
	}
	manager := NewManager(identity.NewService(mockStore), okRouter())

	if _, err := manager.Controller("op-1"); !errors.Is(err, identity.ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestManager_RefreshIdentityAfterBindAndUnbind(t *testing.T) {
	var operator *store.Operator = &store.Operator{ID: "op-1", Username: "demo"}
	mockStore := &testutil.MockStore{
		GetOperatorByIDFunc: func(id string) (*store.Operator, error) {
			return operator, nil
		},
		FindEndUserByIINFunc: func(iin string) (*store.EndUser, error) {
			return &store.EndUser{ID: "user-1", IIN: iin, DisplayName: "Jamie Doe"}, nil
		},
	}
	manager := NewManager(identity.NewService(mockStore), okRouter())

	controller, err := manager.Controller("op-1")
	if err != nil {
		t.Fatalf("Expected controller, got error %v", err)
	}
	if controller.Snapshot().Identity != nil {
		t.Fatal("Expected gate unsatisfied before linking")
	}

	operator = linkedOperator("ABCD-1234-EF56-7890")
	if err := manager.RefreshIdentity("op-1"); err != nil {
		t.Fatalf("Expected refresh to succeed, got %v", err)
	}
	if controller.Snapshot().Identity == nil {
		t.Error("Expected gate satisfied after linking")
	}

	operator = &store.Operator{ID: "op-1", Username: "demo"}
	if err := manager.RefreshIdentity("op-1"); err != nil {
		t.Fatalf("Expected refresh to succeed, got %v", err)
	}
	if controller.Snapshot().Identity != nil {
		t.Error("Expected gate unsatisfied after unlinking")
	}
}

func TestManager_RefreshIdentityWithoutSessionIsNoOp(t *testing.T) {
	gateLoads := 0
	mockStore := &testutil.MockStore{
		GetOperatorByIDFunc: func(id string) (*store.Operator, error) {
			gateLoads++
			return &store.Operator{ID: id, Username: "demo"}, nil
		},
	}
	manager := NewManager(identity.NewService(mockStore), okRouter())

	if err := manager.RefreshIdentity("op-1"); err != nil {
		t.Fatalf("Expected no-op refresh to succeed, got %v", err)
	}
	if gateLoads != 0 {
		t.Errorf("Expected no gate load without a session, got %d", gateLoads)
	}
}
