package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storekart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements OrderRepository using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, address_id, total_price, payment_method, coupon_code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.CustomerID,
		order.AddressID,
		order.TotalPrice,
		order.PaymentMethod,
		order.CouponCode,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created")

	return nil
}

// CreateOrderItems inserts the order's line items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, title_snapshot, unit_price_snapshot, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.TitleSnapshot, item.UnitPriceSnapshot, item.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order line item")
			return fmt.Errorf("failed to create order line item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order line items created")

	return nil
}

// GetByID retrieves an order with its line items, or nil if absent.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	orderQuery := `
		SELECT id, customer_id, address_id, total_price, payment_method, coupon_code, status, created_at, updated_at, cancelled_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.AddressID,
		&order.TotalPrice,
		&order.PaymentMethod,
		&order.CouponCode,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.itemsForOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// ListByCustomer retrieves a customer's orders, newest first.
func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	query := `
		SELECT id, customer_id, address_id, total_price, payment_method, coupon_code, status, created_at, updated_at, cancelled_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`

	return r.queryOrders(ctx, query, customerID)
}

// ListByStatus retrieves orders in a given status, newest first.
func (r *orderRepository) ListByStatus(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT id, customer_id, address_id, total_price, payment_method, coupon_code, status, created_at, updated_at, cancelled_at
		FROM orders
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryOrders(ctx, query, status, limit, offset)
}

// TransitionStatus atomically moves an order between statuses. The WHERE
// clause on the source statuses is what serializes racing transitions: the
// loser sees zero rows affected.
func (r *orderRepository) TransitionStatus(ctx context.Context, orderID uuid.UUID, from []model.OrderStatus, to model.OrderStatus, cancelledAt *time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET status = $2, cancelled_at = COALESCE($3, cancelled_at), updated_at = $4
		WHERE id = $1 AND status = ANY($5)
	`

	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}

	tag, err := r.pool.Exec(ctx, query, orderID, to, cancelledAt, time.Now(), sources)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("to", string(to)).
			Msg("failed to transition order status")
		return false, fmt.Errorf("failed to transition order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("order_id", orderID.String()).
			Str("to", string(to)).
			Msg("order status transition lost the race or was illegal")
		return false, nil
	}

	return true, nil
}

// queryOrders runs an order query and hydrates line items for each result.
func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var order model.Order
		err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.AddressID,
			&order.TotalPrice,
			&order.PaymentMethod,
			&order.CouponCode,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.CancelledAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := r.itemsForOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// itemsForOrder retrieves the line items of a single order.
func (r *orderRepository) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderLineItem, error) {
	query := `
		SELECT id, order_id, product_id, title_snapshot, unit_price_snapshot, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order line items")
		return nil, fmt.Errorf("failed to query order line items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderLineItem
	for rows.Next() {
		var item model.OrderLineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.TitleSnapshot, &item.UnitPriceSnapshot, &item.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line item row")
			return nil, fmt.Errorf("failed to scan order line item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line item rows")
		return nil, fmt.Errorf("error iterating order line items: %w", err)
	}

	return items, nil
}
