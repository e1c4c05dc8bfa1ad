package pricing

import (
	"testing"

	"storekart/internal/coupon"
	"storekart/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(price string, quantity int) model.CartItem {
	return model.CartItem{
		ProductID:      uuid.New(),
		Name:           "test product",
		UnitPriceAtAdd: decimal.RequireFromString(price),
		Quantity:       quantity,
	}
}

func TestLineTotal(t *testing.T) {
	total := LineTotal(item("19.99", 3))
	assert.True(t, decimal.RequireFromString("59.97").Equal(total))
}

func TestSubtotal(t *testing.T) {
	tests := []struct {
		name     string
		items    []model.CartItem
		expected string
	}{
		{
			name:     "empty cart",
			items:    nil,
			expected: "0",
		},
		{
			name:     "single item",
			items:    []model.CartItem{item("100", 1)},
			expected: "100",
		},
		{
			name:     "multiple items",
			items:    []model.CartItem{item("20.00", 2), item("15.00", 1)},
			expected: "55",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subtotal := Subtotal(tt.items)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(subtotal))
		})
	}
}

func TestEngine_Quote_WithCoupon(t *testing.T) {
	engine := NewEngine(coupon.Static())

	totals, err := engine.Quote([]model.CartItem{item("100", 1)}, "FIRST10")

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(totals.Subtotal))
	assert.True(t, decimal.RequireFromString("10").Equal(totals.CouponDiscount))
	assert.True(t, decimal.RequireFromString("2").Equal(totals.ServiceDiscount))
	assert.True(t, decimal.RequireFromString("88").Equal(totals.Payable))
}

func TestEngine_Quote_InvalidCoupon(t *testing.T) {
	engine := NewEngine(coupon.Static())

	totals, err := engine.Quote([]model.CartItem{item("20.00", 2), item("15.00", 1)}, "BADCODE")

	// Unknown codes do not block the quote; the totals stay usable.
	require.ErrorIs(t, err, model.ErrInvalidCoupon)
	assert.True(t, decimal.RequireFromString("55").Equal(totals.Subtotal))
	assert.True(t, totals.CouponDiscount.IsZero())
	assert.True(t, decimal.RequireFromString("1.10").Equal(totals.ServiceDiscount), "got %s", totals.ServiceDiscount)
	assert.True(t, decimal.RequireFromString("53.90").Equal(totals.Payable), "got %s", totals.Payable)
}

func TestEngine_Quote_NoCoupon(t *testing.T) {
	engine := NewEngine(coupon.Static())

	totals, err := engine.Quote([]model.CartItem{item("50", 1)}, "")

	require.NoError(t, err)
	assert.True(t, totals.CouponDiscount.IsZero())
	assert.True(t, decimal.RequireFromString("49").Equal(totals.Payable))
}

func TestEngine_Quote_EmptyCart(t *testing.T) {
	engine := NewEngine(coupon.Static())

	totals, err := engine.Quote(nil, "")

	require.NoError(t, err)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Payable.IsZero())
}

func TestEngine_Quote_NoIntermediateRounding(t *testing.T) {
	engine := NewEngine(coupon.Static())

	// Three at 0.333 gives exact intermediates that naive per-step rounding
	// would distort.
	totals, err := engine.Quote([]model.CartItem{item("0.333", 3)}, "FIRST10")

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.999").Equal(totals.Subtotal))
	assert.True(t, decimal.RequireFromString("0.0999").Equal(totals.CouponDiscount))
	assert.True(t, decimal.RequireFromString("0.01998").Equal(totals.ServiceDiscount))
	assert.True(t, decimal.RequireFromString("0.87912").Equal(totals.Payable))

	rounded := totals.Rounded()
	assert.True(t, decimal.RequireFromString("0.88").Equal(rounded.Payable))
}

func TestEngine_CouponDiscount(t *testing.T) {
	book := coupon.NewMapBook(2)
	book.Add("HALF", decimal.NewFromInt(50))
	engine := NewEngine(book)

	tests := []struct {
		name     string
		code     string
		expected string
		err      error
	}{
		{name: "empty code", code: "", expected: "0"},
		{name: "known code", code: "HALF", expected: "100"},
		{name: "unknown code", code: "NOPE", expected: "0", err: model.ErrInvalidCoupon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discount, err := engine.CouponDiscount(decimal.NewFromInt(200), tt.code)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(discount))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "53.9", Round2(decimal.RequireFromString("53.90")).String())
	assert.Equal(t, "10.35", Round2(decimal.RequireFromString("10.345")).String())
}
