package integration

import (
	"context"
	"testing"
	"time"

	"storekart/internal/model"
	"storekart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository_Lifecycle(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	repo := repository.NewCartRepository(db.Pool, logger)
	customerID := uuid.New()

	// First read creates an empty cart.
	cart, err := repo.GetOrCreate(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, customerID, cart.CustomerID)
	assert.Empty(t, cart.Items)
	assert.False(t, cart.PriceDrifted)

	product := SeedProduct(t, db.Pool, "Widget", "9.99", 10, true)

	item := model.CartItem{
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPriceAtAdd: product.Price,
		Quantity:       2,
		AddedAt:        time.Now(),
	}
	require.NoError(t, repo.UpsertItem(ctx, customerID, item))

	cart, err = repo.GetOrCreate(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("9.99").Equal(cart.Items[0].UnitPriceAtAdd))

	// Upsert on the same product replaces the quantity, not the snapshot.
	item.Quantity = 5
	item.UnitPriceAtAdd = decimal.RequireFromString("99.99")
	require.NoError(t, repo.UpsertItem(ctx, customerID, item))

	cart, err = repo.GetOrCreate(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("9.99").Equal(cart.Items[0].UnitPriceAtAdd))

	require.NoError(t, repo.SetQuantity(ctx, customerID, product.ID, 3))

	require.NoError(t, repo.UpdatePrices(ctx, customerID, []model.PriceUpdate{
		{ProductID: product.ID, NewPrice: decimal.RequireFromString("12.50")},
	}))

	now := time.Now()
	require.NoError(t, repo.SetReconciled(ctx, customerID, true, false, now))

	cart, err = repo.GetOrCreate(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("12.50").Equal(cart.Items[0].UnitPriceAtAdd))
	assert.True(t, cart.PriceDrifted)

	require.NoError(t, repo.RemoveItem(ctx, customerID, product.ID))
	assert.ErrorIs(t, repo.RemoveItem(ctx, customerID, product.ID), model.ErrNotFound)

	// Clearing an already empty cart is a no-op.
	require.NoError(t, repo.ClearItems(ctx, customerID))
}

func TestCartRepository_SetQuantity_MissingItem(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	repo := repository.NewCartRepository(db.Pool, zerolog.Nop())
	customerID := uuid.New()

	_, err := repo.GetOrCreate(ctx, customerID)
	require.NoError(t, err)

	err = repo.SetQuantity(ctx, customerID, uuid.New(), 3)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestOrderRepository_CreateAndRead(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	repo := repository.NewOrderRepository(db.Pool, logger)
	product := SeedProduct(t, db.Pool, "Widget", "20.00", 10, true)
	customerID := uuid.New()

	order := &model.Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		AddressID:     uuid.New(),
		TotalPrice:    decimal.RequireFromString("53.90"),
		PaymentMethod: model.PaymentMethodCOD,
		Status:        model.OrderStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	items := []model.OrderLineItem{
		{
			ID:                uuid.New(),
			OrderID:           order.ID,
			ProductID:         product.ID,
			TitleSnapshot:     product.Name,
			UnitPriceSnapshot: product.Price,
			Quantity:          2,
		},
	}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))

	found, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.OrderStatusPending, found.Status)
	assert.True(t, decimal.RequireFromString("53.90").Equal(found.TotalPrice))
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Widget", found.Items[0].TitleSnapshot)

	listed, err := repo.ListByCustomer(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	byStatus, err := repo.ListByStatus(ctx, model.OrderStatusPending, 10, 0)
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)
}

func TestOrderRepository_TransitionStatus(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	repo := repository.NewOrderRepository(db.Pool, zerolog.Nop())

	order := &model.Order{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		AddressID:     uuid.New(),
		TotalPrice:    decimal.NewFromInt(10),
		PaymentMethod: model.PaymentMethodOnline,
		Status:        model.OrderStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, tx.Commit(ctx))

	ok, err := repo.TransitionStatus(ctx, order.ID,
		[]model.OrderStatus{model.OrderStatusPending}, model.OrderStatusConfirmed, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// Re-running the same transition finds no pending row.
	ok, err = repo.TransitionStatus(ctx, order.ID,
		[]model.OrderStatus{model.OrderStatusPending}, model.OrderStatusConfirmed, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now()
	ok, err = repo.TransitionStatus(ctx, order.ID,
		[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusConfirmed},
		model.OrderStatusCancelled, &now)
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, found.Status)
	require.NotNil(t, found.CancelledAt)
}

func TestProductRepository_ListAndGet(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	repo := repository.NewProductRepository(db.Pool, zerolog.Nop())

	SeedProduct(t, db.Pool, "Widget", "9.99", 5, true)
	SeedProduct(t, db.Pool, "Gadget", "19.99", 3, true)
	inactive := SeedProduct(t, db.Pool, "Relic", "1.00", 0, false)

	products, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	found, err := repo.GetByID(ctx, inactive.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.Active)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAddressRepository_GetByID(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	repo := repository.NewAddressRepository(db.Pool, zerolog.Nop())
	customerID := uuid.New()
	address := SeedAddress(t, db.Pool, customerID)

	found, err := repo.GetByID(ctx, address.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, customerID, found.CustomerID)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
