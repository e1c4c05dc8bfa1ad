package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"storekart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByStatus(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, orderID uuid.UUID, from []model.OrderStatus, to model.OrderStatus, cancelledAt *time.Time) (bool, error) {
	args := m.Called(ctx, orderID, from, to, cancelledAt)
	return args.Bool(0), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx - not used in these tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

func testCreateInput(customerID uuid.UUID) CreateInput {
	return CreateInput{
		CustomerID:    customerID,
		AddressID:     uuid.New(),
		PaymentMethod: model.PaymentMethodCOD,
		Items: []model.CartItem{
			{ProductID: uuid.New(), Name: "Widget", UnitPriceAtAdd: decimal.NewFromInt(20), Quantity: 2},
			{ProductID: uuid.New(), Name: "Gadget", UnitPriceAtAdd: decimal.NewFromInt(15), Quantity: 1},
		},
		Total: decimal.RequireFromString("53.90"),
	}
}

func TestManager_Create_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	customerID := uuid.New()

	mockRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderLineItem")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	manager := NewManager(mockRepo, logger)

	order, err := manager.Create(ctx, testCreateInput(customerID))

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, customerID, order.CustomerID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("53.90").Equal(order.TotalPrice))
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "Widget", order.Items[0].TitleSnapshot)
	assert.True(t, mockTx.committed)

	mockRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestManager_Create_EmptyCart(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	manager := NewManager(mockRepo, logger)

	in := testCreateInput(uuid.New())
	in.Items = nil

	order, err := manager.Create(ctx, in)

	assert.ErrorIs(t, err, model.ErrEmptyCart)
	assert.Nil(t, order)
	mockRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestManager_Create_ItemInsertFailureRollsBack(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderLineItem")).
		Return(errors.New("insert failed"))
	mockTx.On("Rollback", ctx).Return(nil)

	manager := NewManager(mockRepo, logger)

	order, err := manager.Create(ctx, testCreateInput(uuid.New()))

	require.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)
}

func TestManager_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	owner := uuid.New()
	orderID := uuid.New()

	stored := &model.Order{ID: orderID, CustomerID: owner, Status: model.OrderStatusPending}

	tests := []struct {
		name     string
		customer uuid.UUID
		stored   *model.Order
		wantErr  error
	}{
		{name: "owner reads own order", customer: owner, stored: stored},
		{name: "other customer is rejected", customer: uuid.New(), stored: stored, wantErr: model.ErrForbidden},
		{name: "unknown order", customer: owner, stored: nil, wantErr: model.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockOrderRepository)
			mockRepo.On("GetByID", ctx, orderID).Return(tt.stored, nil)

			manager := NewManager(mockRepo, logger)
			order, err := manager.GetByID(ctx, orderID, tt.customer)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, order)
			} else {
				require.NoError(t, err)
				assert.Equal(t, orderID, order.ID)
			}
		})
	}
}

func TestManager_Cancel_FromCancellableStatuses(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	owner := uuid.New()

	for _, status := range []model.OrderStatus{model.OrderStatusPending, model.OrderStatusConfirmed} {
		t.Run(string(status), func(t *testing.T) {
			orderID := uuid.New()
			mockRepo := new(MockOrderRepository)
			mockRepo.On("GetByID", ctx, orderID).
				Return(&model.Order{ID: orderID, CustomerID: owner, Status: status}, nil)
			mockRepo.On("TransitionStatus", ctx, orderID, cancellableStatuses, model.OrderStatusCancelled, mock.AnythingOfType("*time.Time")).
				Return(true, nil)

			manager := NewManager(mockRepo, logger)
			order, err := manager.Cancel(ctx, orderID, owner)

			require.NoError(t, err)
			assert.Equal(t, model.OrderStatusCancelled, order.Status)
			require.NotNil(t, order.CancelledAt)
		})
	}
}

func TestManager_Cancel_AfterShipping(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	owner := uuid.New()

	statuses := []model.OrderStatus{
		model.OrderStatusShipped,
		model.OrderStatusOutForDelivery,
		model.OrderStatusDelivered,
		model.OrderStatusCancelled,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			orderID := uuid.New()
			mockRepo := new(MockOrderRepository)
			mockRepo.On("GetByID", ctx, orderID).
				Return(&model.Order{ID: orderID, CustomerID: owner, Status: status}, nil)

			manager := NewManager(mockRepo, logger)
			order, err := manager.Cancel(ctx, orderID, owner)

			assert.ErrorIs(t, err, model.ErrOrderNotCancellable)
			assert.Nil(t, order)
			mockRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestManager_Cancel_NotOwner(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	orderID := uuid.New()

	mockRepo := new(MockOrderRepository)
	mockRepo.On("GetByID", ctx, orderID).
		Return(&model.Order{ID: orderID, CustomerID: uuid.New(), Status: model.OrderStatusPending}, nil)

	manager := NewManager(mockRepo, logger)
	order, err := manager.Cancel(ctx, orderID, uuid.New())

	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.Nil(t, order)
}

func TestManager_Cancel_LostRace(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	owner := uuid.New()
	orderID := uuid.New()

	// The order read back as pending, but an admin shipped it before the
	// conditional update ran.
	mockRepo := new(MockOrderRepository)
	mockRepo.On("GetByID", ctx, orderID).
		Return(&model.Order{ID: orderID, CustomerID: owner, Status: model.OrderStatusPending}, nil)
	mockRepo.On("TransitionStatus", ctx, orderID, cancellableStatuses, model.OrderStatusCancelled, mock.AnythingOfType("*time.Time")).
		Return(false, nil)

	manager := NewManager(mockRepo, logger)
	order, err := manager.Cancel(ctx, orderID, owner)

	assert.ErrorIs(t, err, model.ErrOrderNotCancellable)
	assert.Nil(t, order)
}

func TestManager_Advance_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	orderID := uuid.New()

	mockRepo := new(MockOrderRepository)
	mockRepo.On("GetByID", ctx, orderID).
		Return(&model.Order{ID: orderID, CustomerID: uuid.New(), Status: model.OrderStatusConfirmed}, nil)
	mockRepo.On("TransitionStatus", ctx, orderID, []model.OrderStatus{model.OrderStatusConfirmed}, model.OrderStatusShipped, (*time.Time)(nil)).
		Return(true, nil)

	manager := NewManager(mockRepo, logger)
	order, err := manager.Advance(ctx, orderID, model.OrderStatusShipped)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, order.Status)
	mockRepo.AssertExpectations(t)
}

func TestManager_Advance_IllegalTransition(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	orderID := uuid.New()

	mockRepo := new(MockOrderRepository)
	mockRepo.On("GetByID", ctx, orderID).
		Return(&model.Order{ID: orderID, CustomerID: uuid.New(), Status: model.OrderStatusPending}, nil)

	manager := NewManager(mockRepo, logger)
	order, err := manager.Advance(ctx, orderID, model.OrderStatusDelivered)

	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.Nil(t, order)
	mockRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestManager_Advance_LostRace(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	orderID := uuid.New()

	mockRepo := new(MockOrderRepository)
	mockRepo.On("GetByID", ctx, orderID).
		Return(&model.Order{ID: orderID, CustomerID: uuid.New(), Status: model.OrderStatusPending}, nil)
	mockRepo.On("TransitionStatus", ctx, orderID, []model.OrderStatus{model.OrderStatusPending}, model.OrderStatusConfirmed, (*time.Time)(nil)).
		Return(false, nil)

	manager := NewManager(mockRepo, logger)
	order, err := manager.Advance(ctx, orderID, model.OrderStatusConfirmed)

	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.Nil(t, order)
}
