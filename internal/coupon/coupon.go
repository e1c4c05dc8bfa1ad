// Package coupon resolves coupon codes to percentage discounts. The built-in
// book recognises a single code; larger books can be loaded from gzipped
// files held locally or in S3, one "CODE,PERCENT" entry per line.
package coupon

import (
	"context"

	"github.com/shopspring/decimal"
)

// Book resolves a coupon code to its discount percentage.
type Book interface {
	// Resolve returns the discount percent (0-100) for a code. The second
	// return is false for unrecognised codes.
	Resolve(code string) (decimal.Decimal, bool)

	// Size returns the number of codes in the book.
	Size() int
}

// Loader reads a gzipped coupon book file into a Book.
type Loader interface {
	Load(ctx context.Context, filePath string) (Book, error)
}
