// Package pricing computes cart totals. Every function is a pure function of
// the cart snapshot and discount inputs; no total is ever cached, displayed
// totals are recomputed from line items on every read.
package pricing

import (
	"fmt"

	"storekart/internal/coupon"
	"storekart/internal/model"

	"github.com/shopspring/decimal"
)

// serviceDiscountPercent is the standing storewide reduction applied to every
// order, independent of any coupon. The two discounts stack additively.
var serviceDiscountPercent = decimal.NewFromInt(2)

var oneHundred = decimal.NewFromInt(100)

// Totals is the complete price breakdown for a cart. All values are exact;
// rounding to two decimal places happens only at display or persistence via
// Round2.
type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	CouponDiscount  decimal.Decimal `json:"couponDiscount"`
	ServiceDiscount decimal.Decimal `json:"serviceDiscount"`
	Payable         decimal.Decimal `json:"payable"`
}

// Engine computes totals against a coupon book.
type Engine struct {
	book coupon.Book
}

// NewEngine creates a pricing engine backed by the given coupon book.
func NewEngine(book coupon.Book) *Engine {
	return &Engine{book: book}
}

// LineTotal is the item's snapshot price times its quantity.
func LineTotal(item model.CartItem) decimal.Decimal {
	return item.UnitPriceAtAdd.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Subtotal sums the line totals of every item.
func Subtotal(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// CouponDiscount resolves a coupon code against the book and returns the
// discount it grants on the subtotal. An unrecognised code yields a zero
// discount together with model.ErrInvalidCoupon; callers treat that as a
// warning, not a hard failure.
func (e *Engine) CouponDiscount(subtotal decimal.Decimal, code string) (decimal.Decimal, error) {
	if code == "" {
		return decimal.Zero, nil
	}

	percent, ok := e.book.Resolve(code)
	if !ok {
		return decimal.Zero, model.ErrInvalidCoupon
	}

	return subtotal.Mul(percent).Div(oneHundred), nil
}

// ServiceDiscount is the flat storewide reduction on the subtotal.
func ServiceDiscount(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(serviceDiscountPercent).Div(oneHundred)
}

// Quote computes the full breakdown for a cart snapshot and coupon code.
// When the code is unrecognised the returned Totals are still valid (with a
// zero coupon discount) and the error is model.ErrInvalidCoupon.
//
// A negative payable total cannot arise from percentage discounts on a
// non-negative subtotal; if it does, the invariant is violated and a hard
// error is returned rather than clamping.
func (e *Engine) Quote(items []model.CartItem, couponCode string) (Totals, error) {
	subtotal := Subtotal(items)

	couponDiscount, couponErr := e.CouponDiscount(subtotal, couponCode)
	serviceDiscount := ServiceDiscount(subtotal)

	payable := subtotal.Sub(couponDiscount).Sub(serviceDiscount)
	if payable.IsNegative() {
		return Totals{}, fmt.Errorf("payable total %s is negative for subtotal %s", payable, subtotal)
	}

	return Totals{
		Subtotal:        subtotal,
		CouponDiscount:  couponDiscount,
		ServiceDiscount: serviceDiscount,
		Payable:         payable,
	}, couponErr
}

// Round2 rounds a monetary value to two decimal places for display or
// persistence.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Rounded returns a copy of the totals with every value rounded for display.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:        Round2(t.Subtotal),
		CouponDiscount:  Round2(t.CouponDiscount),
		ServiceDiscount: Round2(t.ServiceDiscount),
		Payable:         Round2(t.Payable),
	}
}
