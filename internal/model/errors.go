package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeInvalidAddress       = "INVALID_ADDRESS"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeInvalidCoupon        = "INVALID_COUPON"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeOrderNotCancellable  = "ORDER_NOT_CANCELLABLE"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodePricingUnavailable   = "PRICING_UNAVAILABLE"
	ErrCodeProductUnavailable   = "PRODUCT_UNAVAILABLE"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// DomainError is a business-rule violation carrying a stable machine code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidAddress       = NewDomainError(ErrCodeInvalidAddress, "Address does not exist")
	ErrInsufficientStock    = NewDomainError(ErrCodeInsufficientStock, "Requested quantity exceeds available stock")
	ErrInvalidCoupon        = NewDomainError(ErrCodeInvalidCoupon, "Coupon code is not recognised")
	ErrInvalidTransition    = NewDomainError(ErrCodeInvalidTransition, "Order status transition is not permitted")
	ErrOrderNotCancellable  = NewDomainError(ErrCodeOrderNotCancellable, "Order cannot be cancelled: already shipped or delivered")
	ErrNotFound             = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrForbidden            = NewDomainError(ErrCodeForbidden, "Resource belongs to another customer")
	ErrPricingUnavailable   = NewDomainError(ErrCodePricingUnavailable, "Current prices could not be obtained")
	ErrProductUnavailable   = NewDomainError(ErrCodeProductUnavailable, "Product is inactive or no longer sold")
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPaymentMethod = NewDomainError(ErrCodeInvalidPaymentMethod, "Payment method must be cod or online")
)
