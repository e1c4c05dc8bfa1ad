package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the state machine driving an order's lifecycle.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// ParseOrderStatus validates a status string from an API request.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// PaymentMethod is the payment method chosen at checkout. Settlement is
// delegated to an external processor; only the choice is recorded.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodOnline PaymentMethod = "online"
)

// ParsePaymentMethod validates a payment method string from an API request.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodCOD, PaymentMethodOnline:
		return PaymentMethod(s), true
	}
	return "", false
}

// Order is a financial record. Line items and TotalPrice are snapshots taken
// at creation and never re-read from the catalogue afterwards.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CustomerID    uuid.UUID       `json:"customerId" db:"customer_id"`
	AddressID     uuid.UUID       `json:"addressId" db:"address_id"`
	Items         []OrderLineItem `json:"items"`
	TotalPrice    decimal.Decimal `json:"totalPrice" db:"total_price"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	CouponCode    *string         `json:"couponCode,omitempty" db:"coupon_code"`
	Status        OrderStatus     `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty" db:"cancelled_at"`
}

// OrderLineItem is one product line within an order, owned exclusively by it
// and immutable once the order exists.
type OrderLineItem struct {
	ID                uuid.UUID       `json:"-" db:"id"`
	OrderID           uuid.UUID       `json:"-" db:"order_id"`
	ProductID         uuid.UUID       `json:"productId" db:"product_id"`
	TitleSnapshot     string          `json:"title" db:"title_snapshot"`
	UnitPriceSnapshot decimal.Decimal `json:"unitPrice" db:"unit_price_snapshot"`
	Quantity          int             `json:"quantity" db:"quantity"`
}
