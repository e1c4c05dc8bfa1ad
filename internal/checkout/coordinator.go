// Package checkout orchestrates cart reconciliation, pricing, order creation
// and the cart clear as one logical unit of work under the customer's cart
// lock.
package checkout

import (
	"context"
	"errors"
	"time"

	"storekart/internal/cart"
	"storekart/internal/model"
	"storekart/internal/order"
	"storekart/internal/pricing"
	"storekart/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Input is a checkout request.
type Input struct {
	AddressID     uuid.UUID
	PaymentMethod model.PaymentMethod
	CouponCode    string
}

// Result is a successful checkout. PriceDrifted and CouponRejected are
// warnings for the caller's UI, not failures: the order in Result was
// created with the reflected totals.
type Result struct {
	Order          *model.Order   `json:"order"`
	Totals         pricing.Totals `json:"totals"`
	PriceDrifted   bool           `json:"priceDrifted"`
	CouponRejected bool           `json:"couponRejected"`
}

// Coordinator defines the checkout operation.
type Coordinator interface {
	Checkout(ctx context.Context, customerID uuid.UUID, in Input) (*Result, error)
}

// coordinator implements Coordinator.
type coordinator struct {
	carts        cart.Store
	orders       order.Manager
	addresses    repository.AddressRepository
	pricer       *pricing.Engine
	clearRetries int
	clearBackoff time.Duration
	logger       zerolog.Logger
}

// NewCoordinator creates a checkout coordinator. clearRetries bounds the
// post-order cart-clear retry loop; clearBackoff is the pause between
// attempts.
func NewCoordinator(
	carts cart.Store,
	orders order.Manager,
	addresses repository.AddressRepository,
	pricer *pricing.Engine,
	clearRetries int,
	clearBackoff time.Duration,
	logger zerolog.Logger,
) Coordinator {
	return &coordinator{
		carts:        carts,
		orders:       orders,
		addresses:    addresses,
		pricer:       pricer,
		clearRetries: clearRetries,
		clearBackoff: clearBackoff,
		logger:       logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout runs the full sequence under the customer's cart lock: strict
// reconcile, empty-cart and address checks, pricing, order creation, cart
// clear. No cart mutation can interleave between order creation and the
// clear.
func (c *coordinator) Checkout(ctx context.Context, customerID uuid.UUID, in Input) (*Result, error) {
	var result *Result

	err := c.carts.Locked(ctx, customerID, func(session cart.Session) error {
		snapshot, err := session.ReconcileStrict(ctx)
		if err != nil {
			return err
		}

		if len(snapshot.Items) == 0 {
			return model.ErrEmptyCart
		}

		if err := c.validateAddress(ctx, in.AddressID, customerID); err != nil {
			return err
		}

		totals, quoteErr := c.pricer.Quote(snapshot.Items, in.CouponCode)
		couponRejected := errors.Is(quoteErr, model.ErrInvalidCoupon)
		if quoteErr != nil && !couponRejected {
			return quoteErr
		}

		var couponCode *string
		if in.CouponCode != "" && !couponRejected {
			couponCode = &in.CouponCode
		}

		created, err := c.orders.Create(ctx, order.CreateInput{
			CustomerID:    customerID,
			AddressID:     in.AddressID,
			PaymentMethod: in.PaymentMethod,
			CouponCode:    couponCode,
			Items:         snapshot.Items,
			Total:         totals.Payable,
		})
		if err != nil {
			// Order creation failed: the cart is left untouched.
			return err
		}

		// The order exists from here on. A failing clear is retried and, if
		// retries run out, logged for manual reconciliation; the order is
		// never rolled back because of it.
		c.clearCart(ctx, session, customerID, created.ID)

		result = &Result{
			Order:          created,
			Totals:         totals.Rounded(),
			PriceDrifted:   snapshot.PriceDrifted,
			CouponRejected: couponRejected,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// validateAddress checks the address exists and belongs to the customer.
func (c *coordinator) validateAddress(ctx context.Context, addressID, customerID uuid.UUID) error {
	address, err := c.addresses.GetByID(ctx, addressID)
	if err != nil {
		return err
	}
	if address == nil {
		return model.ErrInvalidAddress
	}
	if address.CustomerID != customerID {
		return model.ErrForbidden
	}
	return nil
}

// clearCart empties the cart with bounded retries. Clearing is idempotent,
// so a retry after a partially applied clear is safe.
func (c *coordinator) clearCart(ctx context.Context, session cart.Session, customerID, orderID uuid.UUID) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.clearBackoff), uint64(c.clearRetries-1)),
		ctx,
	)

	err := backoff.Retry(func() error {
		return session.Clear(ctx)
	}, policy)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("customer_id", customerID.String()).
			Str("order_id", orderID.String()).
			Msg("cart clear failed after retries, needs manual reconciliation")
	}
}
