package repository

import (
	"context"
	"fmt"
	"time"

	"storekart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements CartRepository using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetOrCreate returns the customer's cart with its items in insertion order,
// creating an empty cart row on first use.
func (r *cartRepository) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*model.Cart, error) {
	upsert := `
		INSERT INTO carts (customer_id, price_drifted, price_stale, last_reconciled_at, created_at)
		VALUES ($1, FALSE, FALSE, $2, $2)
		ON CONFLICT (customer_id) DO NOTHING
	`

	now := time.Now()
	if _, err := r.pool.Exec(ctx, upsert, customerID, now); err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to ensure cart row")
		return nil, fmt.Errorf("failed to ensure cart: %w", err)
	}

	cartQuery := `
		SELECT customer_id, price_drifted, price_stale, last_reconciled_at, created_at
		FROM carts
		WHERE customer_id = $1
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, cartQuery, customerID).Scan(
		&cart.CustomerID,
		&cart.PriceDrifted,
		&cart.PriceStale,
		&cart.LastReconciledAt,
		&cart.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	itemsQuery := `
		SELECT product_id, name, unit_price_at_add, quantity, added_at
		FROM cart_items
		WHERE customer_id = $1
		ORDER BY added_at, product_id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, customerID)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.UnitPriceAtAdd, &item.Quantity, &item.AddedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return &cart, nil
}

// UpsertItem inserts a cart item or replaces the quantity of an existing one.
// The price snapshot is written only on insert.
func (r *cartRepository) UpsertItem(ctx context.Context, customerID uuid.UUID, item model.CartItem) error {
	query := `
		INSERT INTO cart_items (customer_id, product_id, name, unit_price_at_add, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (customer_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`

	_, err := r.pool.Exec(ctx, query,
		customerID, item.ProductID, item.Name, item.UnitPriceAtAdd, item.Quantity, item.AddedAt)
	if err != nil {
		r.logger.Error().Err(err).
			Str("customer_id", customerID.String()).
			Str("product_id", item.ProductID.String()).
			Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// SetQuantity updates the quantity of an existing cart item.
func (r *cartRepository) SetQuantity(ctx context.Context, customerID, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE customer_id = $1 AND product_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, customerID, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("customer_id", customerID.String()).
			Str("product_id", productID.String()).
			Msg("failed to update cart item quantity")
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// UpdatePrices rewrites the stored price snapshots for the given items.
func (r *cartRepository) UpdatePrices(ctx context.Context, customerID uuid.UUID, updates []model.PriceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	query := `
		UPDATE cart_items
		SET unit_price_at_add = $3
		WHERE customer_id = $1 AND product_id = $2
	`

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, customerID, u.ProductID, u.NewPrice)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(updates); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).
				Str("customer_id", customerID.String()).
				Str("product_id", updates[i].ProductID.String()).
				Msg("failed to update cart item price")
			return fmt.Errorf("failed to update cart item price: %w", err)
		}
	}

	return nil
}

// RemoveItem deletes a single item from the cart.
func (r *cartRepository) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE customer_id = $1 AND product_id = $2`

	tag, err := r.pool.Exec(ctx, query, customerID, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("customer_id", customerID.String()).
			Str("product_id", productID.String()).
			Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// ClearItems deletes every item from the cart. Idempotent.
func (r *cartRepository) ClearItems(ctx context.Context, customerID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE customer_id = $1`

	if _, err := r.pool.Exec(ctx, query, customerID); err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().Str("customer_id", customerID.String()).Msg("cart cleared")

	return nil
}

// SetReconciled records the outcome of a reconciliation pass.
func (r *cartRepository) SetReconciled(ctx context.Context, customerID uuid.UUID, drifted, stale bool, at time.Time) error {
	query := `
		UPDATE carts
		SET price_drifted = $2, price_stale = $3, last_reconciled_at = $4
		WHERE customer_id = $1
	`

	if _, err := r.pool.Exec(ctx, query, customerID, drifted, stale, at); err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to record reconciliation")
		return fmt.Errorf("failed to record reconciliation: %w", err)
	}

	return nil
}
