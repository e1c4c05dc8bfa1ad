package repository

import (
	"context"
	"errors"
	"fmt"

	"storekart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// addressRepository implements AddressRepository using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// GetByID retrieves an address, or nil if absent.
func (r *addressRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	query := `
		SELECT id, customer_id, line1, city, postal_code, created_at
		FROM addresses
		WHERE id = $1
	`

	var a model.Address
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.CustomerID, &a.Line1, &a.City, &a.PostalCode, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return &a, nil
}
