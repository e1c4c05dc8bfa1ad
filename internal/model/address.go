package model

import (
	"time"

	"github.com/google/uuid"
)

// Address is owned by the address-book collaborator. The core only checks
// that an address exists and belongs to the ordering customer; the contents
// are otherwise opaque to it.
type Address struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CustomerID uuid.UUID `json:"customerId" db:"customer_id"`
	Line1      string    `json:"line1" db:"line1"`
	City       string    `json:"city" db:"city"`
	PostalCode string    `json:"postalCode" db:"postal_code"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
