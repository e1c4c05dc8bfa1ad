package coupon

import (
	"github.com/shopspring/decimal"
)

// mapBook implements Book using a map for O(1) lookups. Read-only after
// construction, so safe for concurrent use without locking.
type mapBook struct {
	discounts map[string]decimal.Decimal
}

// NewMapBook creates an empty map-based coupon book.
func NewMapBook(capacity int) *mapBook {
	return &mapBook{
		discounts: make(map[string]decimal.Decimal, capacity),
	}
}

// Resolve returns the discount percent for a code.
func (b *mapBook) Resolve(code string) (decimal.Decimal, bool) {
	percent, ok := b.discounts[code]
	return percent, ok
}

// Size returns the number of codes in the book.
func (b *mapBook) Size() int {
	return len(b.discounts)
}

// Add registers a code with its discount percent.
func (b *mapBook) Add(code string, percent decimal.Decimal) {
	b.discounts[code] = percent
}

// Static returns the built-in coupon book: the standing first-order code
// FIRST10 at 10 percent. Used when no book files are configured or loading
// them fails.
func Static() Book {
	book := NewMapBook(1)
	book.Add("FIRST10", decimal.NewFromInt(10))
	return book
}

// Merge combines several books; later books win on duplicate codes.
func Merge(books ...Book) Book {
	total := 0
	for _, b := range books {
		total += b.Size()
	}

	merged := NewMapBook(total)
	for _, b := range books {
		if mb, ok := b.(*mapBook); ok {
			for code, percent := range mb.discounts {
				merged.Add(code, percent)
			}
		}
	}
	return merged
}
