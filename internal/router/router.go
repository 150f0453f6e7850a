package router

import (
	"net/http"

	"jalai-market/internal/handler"
	"jalai-market/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	donationHandler *handler.DonationHandler,
	notificationHandler *handler.NotificationHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalog
	mux.HandleFunc("POST /api/products", productHandler.Submit)
	mux.HandleFunc("GET /api/products", productHandler.List)
	mux.HandleFunc("GET /api/products/{id}", productHandler.GetByID)
	mux.HandleFunc("PUT /api/products/{id}", productHandler.Update)
	mux.HandleFunc("POST /api/products/{id}/approve", productHandler.Approve)
	mux.HandleFunc("POST /api/products/{id}/reject", productHandler.Reject)
	mux.HandleFunc("POST /api/products/{id}/availability", productHandler.SetAvailability)
	mux.HandleFunc("POST /api/products/{id}/donate", productHandler.MarkDonated)
	mux.HandleFunc("GET /api/sellers/{id}/products", productHandler.ListBySeller)

	// Cart
	mux.HandleFunc("POST /api/cart/items", cartHandler.AddItem)
	mux.HandleFunc("PUT /api/cart/items", cartHandler.UpdateItem)
	mux.HandleFunc("GET /api/cart/{clientId}", cartHandler.View)
	mux.HandleFunc("DELETE /api/cart/{clientId}", cartHandler.Clear)
	mux.HandleFunc("GET /api/cart/{clientId}/count", cartHandler.Count)
	mux.HandleFunc("POST /api/cart/{clientId}/validate", cartHandler.Validate)
	mux.HandleFunc("DELETE /api/cart/{clientId}/items/{productId}", cartHandler.RemoveItem)

	// Orders
	mux.HandleFunc("POST /api/orders", orderHandler.Checkout)
	mux.HandleFunc("GET /api/orders", orderHandler.ListByStatus)
	mux.HandleFunc("GET /api/orders/{id}", orderHandler.GetByID)
	mux.HandleFunc("PUT /api/orders/{id}/status", orderHandler.UpdateStatus)
	mux.HandleFunc("POST /api/orders/{id}/cancel", orderHandler.Cancel)
	mux.HandleFunc("DELETE /api/orders/{id}", orderHandler.Delete)
	mux.HandleFunc("GET /api/clients/{id}/orders", orderHandler.ListByClient)
	mux.HandleFunc("GET /api/clients/{id}/purchases", orderHandler.ClientPurchases)
	mux.HandleFunc("GET /api/sellers/{id}/orders", orderHandler.ListBySeller)
	mux.HandleFunc("GET /api/sellers/{id}/sales", orderHandler.SellerSales)

	// Payments
	mux.HandleFunc("POST /api/payments", paymentHandler.Create)
	mux.HandleFunc("POST /api/payments/mobile-money", paymentHandler.MobileMoney)
	mux.HandleFunc("GET /api/payments/{id}", paymentHandler.GetByID)
	mux.HandleFunc("POST /api/payments/{id}/process", paymentHandler.Process)
	mux.HandleFunc("POST /api/payments/{id}/confirm", paymentHandler.Confirm)
	mux.HandleFunc("POST /api/payments/{id}/cancel", paymentHandler.Cancel)
	mux.HandleFunc("POST /api/payments/{id}/refund", paymentHandler.Refund)
	mux.HandleFunc("GET /api/clients/{id}/payments", paymentHandler.ListByClient)

	// Donations
	mux.HandleFunc("POST /api/donations", donationHandler.Create)
	mux.HandleFunc("GET /api/donations/scheduled", donationHandler.ListScheduledToday)
	mux.HandleFunc("GET /api/donations/overdue", donationHandler.ListOverdue)
	mux.HandleFunc("GET /api/donations/{id}", donationHandler.GetByID)
	mux.HandleFunc("POST /api/donations/{id}/confirm", donationHandler.Confirm)
	mux.HandleFunc("POST /api/donations/{id}/start", donationHandler.Start)
	mux.HandleFunc("POST /api/donations/{id}/complete", donationHandler.Complete)
	mux.HandleFunc("POST /api/donations/{id}/cancel", donationHandler.Cancel)
	mux.HandleFunc("GET /api/clients/{id}/donations", donationHandler.ListByClient)
	mux.HandleFunc("GET /api/clients/{id}/donations/total", donationHandler.ClientCashTotal)
	mux.HandleFunc("POST /api/orphanages/{id}/approve", donationHandler.ApproveOrphanage)
	mux.HandleFunc("POST /api/orphanages/{id}/reject", donationHandler.RejectOrphanage)
	mux.HandleFunc("GET /api/orphanages/{id}/donations", donationHandler.ListByOrphanage)
	mux.HandleFunc("GET /api/orphanages/{id}/donations/total", donationHandler.OrphanageCashTotal)

	// Notifications
	mux.HandleFunc("GET /api/clients/{id}/notifications", notificationHandler.ListForClient)
	mux.HandleFunc("POST /api/clients/{id}/notifications/read", notificationHandler.MarkAllRead)
	mux.HandleFunc("GET /api/orphanages/{id}/notifications", notificationHandler.ListForOrphanage)
	mux.HandleFunc("POST /api/notifications/{id}/read", notificationHandler.MarkRead)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	return h
}
