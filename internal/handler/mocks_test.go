package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storekart/internal/cart"
	"storekart/internal/checkout"
	"storekart/internal/middleware"
	"storekart/internal/model"
	"storekart/internal/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCartStore is a mock implementation of cart.Store.
type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) Get(ctx context.Context, customerID uuid.UUID) (*cart.View, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartStore) AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*cart.View, error) {
	args := m.Called(ctx, customerID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartStore) IncrementItem(ctx context.Context, customerID, productID uuid.UUID) (*cart.View, error) {
	args := m.Called(ctx, customerID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartStore) DecrementItem(ctx context.Context, customerID, productID uuid.UUID) (*cart.View, error) {
	args := m.Called(ctx, customerID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartStore) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*cart.View, error) {
	args := m.Called(ctx, customerID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartStore) Clear(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockCartStore) Reconcile(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockCartStore) Locked(ctx context.Context, customerID uuid.UUID, fn func(cart.Session) error) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

// MockOrderManager is a mock implementation of order.Manager.
type MockOrderManager struct {
	mock.Mock
}

func (m *MockOrderManager) Create(ctx context.Context, in order.CreateInput) (*model.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderManager) GetByID(ctx context.Context, orderID, customerID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, orderID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderManager) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderManager) ListByStatus(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderManager) Cancel(ctx context.Context, orderID, customerID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, orderID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderManager) Advance(ctx context.Context, orderID uuid.UUID, next model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, orderID, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockCoordinator is a mock implementation of checkout.Coordinator.
type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) Checkout(ctx context.Context, customerID uuid.UUID, in checkout.Input) (*checkout.Result, error) {
	args := m.Called(ctx, customerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Result), args.Error(1)
}

// authedRequest builds a request carrying an authenticated customer identity.
func authedRequest(t *testing.T, method, target string, body io.Reader, customerID uuid.UUID) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.WithCustomer(req.Context(), customerID))
}
