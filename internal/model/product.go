package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalogue entry. The core never mutates products; carts and
// orders hold price snapshots, never live references.
type Product struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	Active    bool            `json:"active" db:"active"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
