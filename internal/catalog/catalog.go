// Package catalog exposes the catalogue snapshot provider the cart core
// consumes. The catalogue itself is an external collaborator; the core only
// ever reads point-in-time quotes from it.
package catalog

import (
	"context"
	"fmt"
	"time"

	"storekart/internal/model"
	"storekart/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Provider supplies current price and availability for a product.
type Provider interface {
	// Quote returns the product's current price, stock and active flag.
	// Returns model.ErrNotFound for unknown products. Transient failures are
	// retried once with a short backoff before being reported.
	Quote(ctx context.Context, productID uuid.UUID) (*model.Product, error)
}

// provider implements Provider on top of the product repository, bounding
// every lookup with a timeout so cart reads can never stall on the catalogue.
type provider struct {
	products repository.ProductRepository
	timeout  time.Duration
	retry    time.Duration
	logger   zerolog.Logger
}

// NewProvider creates a catalogue provider with bounded, retried lookups.
func NewProvider(products repository.ProductRepository, timeout, retry time.Duration, logger zerolog.Logger) Provider {
	return &provider{
		products: products,
		timeout:  timeout,
		retry:    retry,
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

// Quote returns the product's current price, stock and active flag.
func (p *provider) Quote(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	var product *model.Product

	lookup := func() error {
		lookupCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		found, err := p.products.GetByID(lookupCtx, productID)
		if err != nil {
			return err
		}
		if found == nil {
			// Absence is definitive, not transient.
			return backoff.Permanent(model.ErrNotFound)
		}
		product = found
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.retry), 1),
		ctx,
	)

	if err := backoff.Retry(lookup, policy); err != nil {
		if err == model.ErrNotFound {
			return nil, model.ErrNotFound
		}
		p.logger.Warn().
			Err(err).
			Str("product_id", productID.String()).
			Msg("catalog price lookup failed after retry")
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}

	return product, nil
}
