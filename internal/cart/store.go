// Package cart owns the customer's working set of items: quantities, price
// snapshots and drift detection. All mutations to one customer's cart are
// serialized through a per-customer lock; customers never contend with each
// other.
package cart

import (
	"context"
	"errors"
	"time"

	"storekart/internal/catalog"
	"storekart/internal/model"
	"storekart/internal/pricing"
	"storekart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// View is the customer-facing read of a cart. Subtotal is recomputed from
// the line items on every read, never cached.
type View struct {
	Items        []model.CartItem `json:"items"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	PriceDrifted bool             `json:"priceDrifted"`
	PriceStale   bool             `json:"priceStale"`
}

// Store defines the cart operations.
type Store interface {
	// Get reconciles the cart against the catalogue and returns it. The
	// drift flag is read-and-clear: the first read after a price change
	// reports priceDrifted=true and resets it.
	Get(ctx context.Context, customerID uuid.UUID) (*View, error)

	// AddItem puts a product in the cart or raises the quantity of an
	// existing line. The whole requested quantity must fit within stock or
	// the call fails with ErrInsufficientStock; nothing is added partially.
	AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*View, error)

	// IncrementItem raises an item's quantity by one, failing with
	// ErrInsufficientStock at the stock ceiling (quantity unchanged).
	IncrementItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error)

	// DecrementItem lowers an item's quantity by one, removing the item
	// entirely when it reaches zero.
	DecrementItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error)

	// RemoveItem unconditionally removes an item.
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error)

	// Clear empties the cart. The cart itself persists. Idempotent.
	Clear(ctx context.Context, customerID uuid.UUID) error

	// Reconcile re-snapshots every item's price from the catalogue and flags
	// drift without consuming the flag. Intended for scheduled refreshes.
	Reconcile(ctx context.Context, customerID uuid.UUID) error

	// Locked runs fn while holding the customer's cart lock, so a checkout
	// can reconcile, create an order and clear the cart without any cart
	// mutation interleaving.
	Locked(ctx context.Context, customerID uuid.UUID, fn func(Session) error) error
}

// Session is the cart surface available inside Locked.
type Session interface {
	// ReconcileStrict reconciles and returns the cart snapshot. Unlike a
	// plain Get it fails with ErrPricingUnavailable when current prices
	// cannot be obtained at all, since an order must not be created on
	// unverified prices. The returned cart carries the consumed drift flag.
	ReconcileStrict(ctx context.Context) (*model.Cart, error)

	// Clear empties the cart. Idempotent.
	Clear(ctx context.Context) error
}

// store implements Store.
type store struct {
	repo    repository.CartRepository
	catalog catalog.Provider
	locks   *keyedMutex
	logger  zerolog.Logger
}

// NewStore creates a cart store.
func NewStore(repo repository.CartRepository, provider catalog.Provider, logger zerolog.Logger) Store {
	return &store{
		repo:    repo,
		catalog: provider,
		locks:   newKeyedMutex(),
		logger:  logger.With().Str("service", "cart").Logger(),
	}
}

// Get reconciles the cart and returns it, consuming the drift flag.
func (s *store) Get(ctx context.Context, customerID uuid.UUID) (*View, error) {
	s.locks.Lock(customerID)
	defer s.locks.Unlock(customerID)

	cart, err := s.reconciled(ctx, customerID, false)
	if err != nil {
		return nil, err
	}

	return s.consumeDrift(ctx, cart)
}

// AddItem puts a product in the cart or raises an existing line's quantity.
func (s *store) AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	s.locks.Lock(customerID)
	defer s.locks.Unlock(customerID)

	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	product, err := s.quoteForMutation(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing := cart.Item(productID)
	newQuantity := quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}

	if newQuantity > product.Stock {
		s.logger.Debug().
			Str("customer_id", customerID.String()).
			Str("product_id", productID.String()).
			Int("requested", newQuantity).
			Int("stock", product.Stock).
			Msg("add rejected, insufficient stock")
		return nil, model.ErrInsufficientStock
	}

	if existing == nil {
		item := model.CartItem{
			ProductID:      productID,
			Name:           product.Name,
			UnitPriceAtAdd: product.Price,
			Quantity:       newQuantity,
			AddedAt:        time.Now(),
		}
		if err := s.repo.UpsertItem(ctx, customerID, item); err != nil {
			return nil, err
		}
	} else {
		// The price snapshot taken at first add is deliberately kept; only
		// reconciliation rewrites it.
		if err := s.repo.SetQuantity(ctx, customerID, productID, newQuantity); err != nil {
			return nil, err
		}
	}

	return s.view(ctx, customerID)
}

// IncrementItem raises an item's quantity by one within the stock ceiling.
func (s *store) IncrementItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error) {
	s.locks.Lock(customerID)
	defer s.locks.Unlock(customerID)

	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	item := cart.Item(productID)
	if item == nil {
		return nil, model.ErrNotFound
	}

	product, err := s.quoteForMutation(ctx, productID)
	if err != nil {
		return nil, err
	}

	if item.Quantity+1 > product.Stock {
		return nil, model.ErrInsufficientStock
	}

	if err := s.repo.SetQuantity(ctx, customerID, productID, item.Quantity+1); err != nil {
		return nil, err
	}

	return s.view(ctx, customerID)
}

// DecrementItem lowers an item's quantity by one, removing it at zero. A
// cart never holds an item with quantity below one.
func (s *store) DecrementItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error) {
	s.locks.Lock(customerID)
	defer s.locks.Unlock(customerID)

	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	item := cart.Item(productID)
	if item == nil {
		return nil, model.ErrNotFound
	}

	if item.Quantity <= 1 {
		if err := s.repo.RemoveItem(ctx, customerID, productID); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.SetQuantity(ctx, customerID, productID, item.Quantity-1); err != nil {
			return nil, err
		}
	}

	return s.view(ctx, customerID)
}

// RemoveItem unconditionally removes an item.
func (s *store) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error) {
	s.locks.Lock(customerID)
	defer s.locks.Unlock(customerID)

	if err := s.repo.RemoveItem(ctx, customerID, productID); err != nil {
		return nil, err
	}

	return s.view(ctx, customerID)
}

// Clear empties the cart.
func (s *store) Clear(ctx context.Context, customerID uuid.UUID) error {
	s.locks.Lock(customerID)
	defer s.locks.Unlock(customerID)

	return s.repo.ClearItems(ctx, customerID)
}

// Reconcile re-snapshots prices and flags drift without consuming the flag.
func (s *store) Reconcile(ctx context.Context, customerID uuid.UUID) error {
	s.locks.Lock(customerID)
	defer s.locks.Unlock(customerID)

	_, err := s.reconciled(ctx, customerID, false)
	return err
}

// Locked runs fn while holding the customer's cart lock.
func (s *store) Locked(ctx context.Context, customerID uuid.UUID, fn func(Session) error) error {
	s.locks.Lock(customerID)
	defer s.locks.Unlock(customerID)

	return fn(&session{store: s, customerID: customerID})
}

// session exposes lock-free cart operations to a Locked callback. The caller
// already holds the customer lock.
type session struct {
	store      *store
	customerID uuid.UUID
}

// ReconcileStrict reconciles the cart, failing when prices cannot be
// verified, and consumes the drift flag into the returned snapshot.
func (se *session) ReconcileStrict(ctx context.Context) (*model.Cart, error) {
	cart, err := se.store.reconciled(ctx, se.customerID, true)
	if err != nil {
		return nil, err
	}

	reported := cart.PriceDrifted
	if reported {
		if err := se.store.repo.SetReconciled(ctx, se.customerID, false, cart.PriceStale, cart.LastReconciledAt); err != nil {
			return nil, err
		}
	}
	cart.PriceDrifted = reported

	return cart, nil
}

// Clear empties the cart.
func (se *session) Clear(ctx context.Context) error {
	return se.store.repo.ClearItems(ctx, se.customerID)
}

// reconciled loads the cart and re-snapshots every item's price.
//
// In soft mode a catalogue failure keeps the last known price and marks the
// cart stale instead of failing the read. In strict mode (checkout) the same
// failure aborts with ErrPricingUnavailable: an order must never be written
// on prices that could not be verified.
func (s *store) reconciled(ctx context.Context, customerID uuid.UUID, strict bool) (*model.Cart, error) {
	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	drifted := cart.PriceDrifted // sticky until a read consumes it
	stale := false
	var updates []model.PriceUpdate

	for i := range cart.Items {
		item := &cart.Items[i]

		product, err := s.catalog.Quote(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				// Product withdrawn from the catalogue: keep the snapshot.
				continue
			}
			if strict {
				return nil, model.ErrPricingUnavailable
			}
			stale = true
			continue
		}

		if !product.Price.Equal(item.UnitPriceAtAdd) {
			s.logger.Info().
				Str("customer_id", customerID.String()).
				Str("product_id", item.ProductID.String()).
				Str("old_price", item.UnitPriceAtAdd.String()).
				Str("new_price", product.Price.String()).
				Msg("cart item price drifted")
			updates = append(updates, model.PriceUpdate{ProductID: item.ProductID, NewPrice: product.Price})
			item.UnitPriceAtAdd = product.Price
			drifted = true
		}
	}

	if err := s.repo.UpdatePrices(ctx, customerID, updates); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repo.SetReconciled(ctx, customerID, drifted, stale, now); err != nil {
		return nil, err
	}

	cart.PriceDrifted = drifted
	cart.PriceStale = stale
	cart.LastReconciledAt = now

	return cart, nil
}

// consumeDrift reports the drift flag and resets it for subsequent reads.
func (s *store) consumeDrift(ctx context.Context, cart *model.Cart) (*View, error) {
	reported := cart.PriceDrifted
	if reported {
		if err := s.repo.SetReconciled(ctx, cart.CustomerID, false, cart.PriceStale, cart.LastReconciledAt); err != nil {
			return nil, err
		}
	}

	return &View{
		Items:        cart.Items,
		Subtotal:     pricing.Round2(pricing.Subtotal(cart.Items)),
		PriceDrifted: reported,
		PriceStale:   cart.PriceStale,
	}, nil
}

// view builds a post-mutation read without reconciling or consuming drift.
func (s *store) view(ctx context.Context, customerID uuid.UUID) (*View, error) {
	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &View{
		Items:        cart.Items,
		Subtotal:     pricing.Round2(pricing.Subtotal(cart.Items)),
		PriceDrifted: cart.PriceDrifted,
		PriceStale:   cart.PriceStale,
	}, nil
}

// quoteForMutation fetches the product for a stock check, translating
// catalogue conditions into cart errors.
func (s *store) quoteForMutation(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	product, err := s.catalog.Quote(ctx, productID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		// Without a live stock count the mutation cannot be validated.
		return nil, model.ErrPricingUnavailable
	}
	if !product.Active {
		return nil, model.ErrProductUnavailable
	}
	return product, nil
}
