package repository

import (
	"context"
	"time"

	"storekart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines data access for the product catalogue. The core
// treats it as read-only.
type ProductRepository interface {
	// List retrieves products with pagination support.
	List(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product, or nil if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// CartRepository defines data access for carts and their items. Callers are
// responsible for per-customer serialization; the repository itself only
// guarantees statement-level atomicity.
type CartRepository interface {
	// GetOrCreate returns the customer's cart with its items in insertion
	// order, creating an empty cart row on first use.
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*model.Cart, error)

	// UpsertItem inserts a cart item or, if the product is already in the
	// cart, replaces its quantity. The stored price snapshot is only written
	// on insert.
	UpsertItem(ctx context.Context, customerID uuid.UUID, item model.CartItem) error

	// SetQuantity updates the quantity of an existing cart item.
	SetQuantity(ctx context.Context, customerID, productID uuid.UUID, quantity int) error

	// UpdatePrices rewrites the stored price snapshots for the given items.
	UpdatePrices(ctx context.Context, customerID uuid.UUID, updates []model.PriceUpdate) error

	// RemoveItem deletes a single item from the cart.
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) error

	// ClearItems deletes every item from the cart. The cart row persists.
	// Clearing an already empty cart is a no-op.
	ClearItems(ctx context.Context, customerID uuid.UUID) error

	// SetReconciled records the outcome of a reconciliation pass.
	SetReconciled(ctx context.Context, customerID uuid.UUID, drifted, stale bool, at time.Time) error
}

// OrderRepository defines data access for orders and their line items.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's line items within the provided
	// transaction. Line items are never mutated afterwards.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error

	// GetByID retrieves an order with its line items, or nil if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByCustomer retrieves a customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)

	// ListByStatus retrieves orders in a given status, newest first.
	ListByStatus(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)

	// TransitionStatus atomically moves an order from one of the given source
	// statuses to the target status. It reports false when the order's
	// current status is not among the sources, which callers use to detect
	// racing transitions.
	TransitionStatus(ctx context.Context, orderID uuid.UUID, from []model.OrderStatus, to model.OrderStatus, cancelledAt *time.Time) (bool, error)
}

// AddressRepository defines read access to the address book collaborator.
type AddressRepository interface {
	// GetByID retrieves an address, or nil if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error)
}
