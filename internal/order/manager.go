// Package order owns the order lifecycle: creation from a reconciled cart
// snapshot and the status state machine. It is the sole writer of order
// status.
package order

import (
	"context"
	"fmt"
	"time"

	"storekart/internal/model"
	"storekart/internal/pricing"
	"storekart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CreateInput carries everything needed to turn a reconciled cart into an
// order. Items and Total are snapshots; the order never re-reads the
// catalogue.
type CreateInput struct {
	CustomerID    uuid.UUID
	AddressID     uuid.UUID
	PaymentMethod model.PaymentMethod
	CouponCode    *string
	Items         []model.CartItem
	Total         decimal.Decimal
}

// Manager defines order lifecycle operations.
type Manager interface {
	// Create persists a new order in pending status from a cart snapshot.
	Create(ctx context.Context, in CreateInput) (*model.Order, error)

	// GetByID retrieves an order, enforcing customer ownership.
	GetByID(ctx context.Context, orderID, customerID uuid.UUID) (*model.Order, error)

	// ListByCustomer retrieves a customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)

	// ListByStatus retrieves orders in a status (admin surface).
	ListByStatus(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)

	// Cancel performs a customer cancellation. Legal only from pending or
	// confirmed; later statuses fail with ErrOrderNotCancellable.
	Cancel(ctx context.Context, orderID, customerID uuid.UUID) (*model.Order, error)

	// Advance moves an order to the next status (admin surface). Transitions
	// are validated against the state machine and applied optimistically, so
	// a racing transition fails with ErrInvalidTransition rather than
	// overwriting.
	Advance(ctx context.Context, orderID uuid.UUID, next model.OrderStatus) (*model.Order, error)
}

// manager implements Manager.
type manager struct {
	repo   repository.OrderRepository
	logger zerolog.Logger
}

// NewManager creates an order lifecycle manager.
func NewManager(repo repository.OrderRepository, logger zerolog.Logger) Manager {
	return &manager{
		repo:   repo,
		logger: logger.With().Str("service", "order").Logger(),
	}
}

// Create persists a new order in pending status from a cart snapshot.
func (m *manager) Create(ctx context.Context, in CreateInput) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, model.ErrEmptyCart
	}

	now := time.Now()
	order := &model.Order{
		ID:            uuid.New(),
		CustomerID:    in.CustomerID,
		AddressID:     in.AddressID,
		TotalPrice:    pricing.Round2(in.Total),
		PaymentMethod: in.PaymentMethod,
		CouponCode:    in.CouponCode,
		Status:        model.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	items := make([]model.OrderLineItem, len(in.Items))
	for i, ci := range in.Items {
		items[i] = model.OrderLineItem{
			ID:                uuid.New(),
			OrderID:           order.ID,
			ProductID:         ci.ProductID,
			TitleSnapshot:     ci.Name,
			UnitPriceSnapshot: pricing.Round2(ci.UnitPriceAtAdd),
			Quantity:          ci.Quantity,
		}
	}

	tx, err := m.repo.BeginTx(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				m.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = m.repo.CreateOrder(ctx, tx, order); err != nil {
		m.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = m.repo.CreateOrderItems(ctx, tx, items); err != nil {
		m.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order line items")
		return nil, fmt.Errorf("failed to create order line items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		m.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = items

	m.logger.Info().
		Str("order_id", order.ID.String()).
		Str("customer_id", in.CustomerID.String()).
		Str("total", order.TotalPrice.String()).
		Int("item_count", len(items)).
		Msg("order created")

	return order, nil
}

// GetByID retrieves an order, enforcing customer ownership.
func (m *manager) GetByID(ctx context.Context, orderID, customerID uuid.UUID) (*model.Order, error) {
	order, err := m.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrNotFound
	}
	if order.CustomerID != customerID {
		return nil, model.ErrForbidden
	}
	return order, nil
}

// ListByCustomer retrieves a customer's orders, newest first.
func (m *manager) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	return m.repo.ListByCustomer(ctx, customerID)
}

// ListByStatus retrieves orders in a status.
func (m *manager) ListByStatus(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	return m.repo.ListByStatus(ctx, status, limit, offset)
}

// Cancel performs a customer cancellation.
func (m *manager) Cancel(ctx context.Context, orderID, customerID uuid.UUID) (*model.Order, error) {
	order, err := m.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrNotFound
	}
	if order.CustomerID != customerID {
		return nil, model.ErrForbidden
	}
	if !Cancellable(order.Status) {
		return nil, model.ErrOrderNotCancellable
	}

	now := time.Now()
	ok, err := m.repo.TransitionStatus(ctx, orderID, cancellableStatuses, model.OrderStatusCancelled, &now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// An admin transition moved the order between our read and write.
		return nil, model.ErrOrderNotCancellable
	}

	m.logger.Info().
		Str("order_id", orderID.String()).
		Str("customer_id", customerID.String()).
		Msg("order cancelled by customer")

	order.Status = model.OrderStatusCancelled
	order.CancelledAt = &now

	return order, nil
}

// Advance moves an order to the next status.
func (m *manager) Advance(ctx context.Context, orderID uuid.UUID, next model.OrderStatus) (*model.Order, error) {
	order, err := m.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrNotFound
	}
	if !CanTransition(order.Status, next) {
		return nil, model.ErrInvalidTransition
	}

	var cancelledAt *time.Time
	if next == model.OrderStatusCancelled {
		now := time.Now()
		cancelledAt = &now
	}

	ok, err := m.repo.TransitionStatus(ctx, orderID, []model.OrderStatus{order.Status}, next, cancelledAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Status moved out from under the read; the caller must re-inspect.
		return nil, model.ErrInvalidTransition
	}

	m.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(order.Status)).
		Str("to", string(next)).
		Msg("order status advanced")

	order.Status = next
	order.CancelledAt = cancelledAt

	return order, nil
}
