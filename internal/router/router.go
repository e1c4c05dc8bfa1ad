package router

import (
	"net/http"

	"storekart/internal/handler"
	"storekart/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
// Customer routes require the resolved customer identity header; admin
// routes require the admin API key.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	adminOrderHandler *handler.AdminOrderHandler,
	adminAPIKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint, no authentication required.
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Public browse surface.
	mux.HandleFunc("GET /api/products", productHandler.List)
	mux.HandleFunc("GET /api/products/{id}", productHandler.GetByID)

	// Customer surface.
	customer := middleware.CustomerAuth(logger)
	mux.Handle("GET /api/cart", customer(http.HandlerFunc(cartHandler.Get)))
	mux.Handle("POST /api/cart/items", customer(http.HandlerFunc(cartHandler.AddItem)))
	mux.Handle("POST /api/cart/items/{productID}/increment", customer(http.HandlerFunc(cartHandler.IncrementItem)))
	mux.Handle("POST /api/cart/items/{productID}/decrement", customer(http.HandlerFunc(cartHandler.DecrementItem)))
	mux.Handle("DELETE /api/cart/items/{productID}", customer(http.HandlerFunc(cartHandler.RemoveItem)))
	mux.Handle("DELETE /api/cart", customer(http.HandlerFunc(cartHandler.Clear)))
	mux.Handle("POST /api/checkout", customer(http.HandlerFunc(checkoutHandler.Checkout)))
	mux.Handle("GET /api/orders", customer(http.HandlerFunc(orderHandler.List)))
	mux.Handle("GET /api/orders/{id}", customer(http.HandlerFunc(orderHandler.GetByID)))
	mux.Handle("POST /api/orders/{id}/cancel", customer(http.HandlerFunc(orderHandler.Cancel)))

	// Admin fulfilment surface.
	admin := middleware.APIKeyAuth(adminAPIKey, logger)
	mux.Handle("GET /api/admin/orders", admin(http.HandlerFunc(adminOrderHandler.List)))
	mux.Handle("POST /api/admin/orders/{id}/advance", admin(http.HandlerFunc(adminOrderHandler.Advance)))

	// Apply outer middleware: Recovery -> Logging -> CORS.
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
