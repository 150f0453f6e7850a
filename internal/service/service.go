package service

import (
	"context"
	"time"

	"jalai-market/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService manages products and the admin approval gate.
type CatalogService interface {
	// Submit lists a new product. It always enters the catalogue pending
	// approval, available, and not donated.
	Submit(ctx context.Context, req model.SubmitProductRequest) (*model.Product, error)

	// Update edits product content and sends it back through the approval
	// gate.
	Update(ctx context.Context, productID uuid.UUID, req model.UpdateProductRequest) (*model.Product, error)

	// Approve marks a pending product approved, recording the admin.
	Approve(ctx context.Context, productID, adminID uuid.UUID) (*model.Product, error)

	// Reject withdraws a product from sale. The reason is mandatory and is
	// forwarded to the seller.
	Reject(ctx context.Context, productID, adminID uuid.UUID, reason string) (*model.Product, error)

	MarkAvailable(ctx context.Context, productID uuid.UUID) error
	MarkUnavailable(ctx context.Context, productID uuid.UUID) error

	// MarkDonated is one-way; the product also becomes unavailable.
	MarkDonated(ctx context.Context, productID uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListApproved(ctx context.Context, limit, offset int) ([]model.Product, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error)
	Search(ctx context.Context, name string, limit, offset int) ([]model.Product, error)
	ListByPriceRange(ctx context.Context, min, max decimal.Decimal, limit, offset int) ([]model.Product, error)
}

// CartService manages per-client cart lines and checkout validation.
type CartService interface {
	// AddItem adds quantity of a product to the cart. Repeat adds increment
	// the existing line; the unit price stays as snapshotted on first add.
	AddItem(ctx context.Context, clientID, productID uuid.UUID, quantity int) (*model.CartLine, error)

	// SetQuantity replaces the quantity of an existing line.
	SetQuantity(ctx context.Context, clientID, productID uuid.UUID, quantity int) error

	// RemoveItem deletes one line; removing a missing line is NotFound.
	RemoveItem(ctx context.Context, clientID, productID uuid.UUID) error

	// Clear empties the cart; clearing an empty cart is a no-op.
	Clear(ctx context.Context, clientID uuid.UUID) error

	View(ctx context.Context, clientID uuid.UUID) (*model.CartView, error)
	Total(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)
	Count(ctx context.Context, clientID uuid.UUID) (int64, error)

	// ValidateForCheckout re-checks that every line still references a
	// purchasable product. It must succeed immediately before checkout.
	ValidateForCheckout(ctx context.Context, clientID uuid.UUID) error
}

// OrderService manages the order lifecycle.
type OrderService interface {
	// CreateFromCart materialises the client's cart into an order and
	// clears the cart in the same transaction. If anything fails the cart
	// is left untouched.
	CreateFromCart(ctx context.Context, clientID uuid.UUID, deliveryDate time.Time) (*model.OrderResponse, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// UpdateStatus applies an adjacent transition; skipping states is a
	// state conflict.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// Cancel fails when the order is DELIVERED or already CANCELLED.
	Cancel(ctx context.Context, orderID uuid.UUID) error

	// Delete removes an order. Only the owning client may delete, and only
	// while the order is PENDING or CANCELLED.
	Delete(ctx context.Context, orderID, clientID uuid.UUID) error

	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Order, error)
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)

	// TotalSalesForSeller sums DELIVERED orders only.
	TotalSalesForSeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)

	// TotalPurchasesForClient sums DELIVERED orders only.
	TotalPurchasesForClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)
}

// PaymentService manages the payment state machine.
type PaymentService interface {
	// Create initiates a PENDING payment, optionally linked to an order. An
	// order can hold at most one live payment.
	Create(ctx context.Context, req model.CreatePaymentRequest) (*model.Payment, error)

	// ProcessMobileMoney creates a payment and charges the mobile-money
	// provider under a bounded timeout. A timed-out charge leaves the
	// payment PROCESSING for out-of-band reconciliation.
	ProcessMobileMoney(ctx context.Context, req model.MobileMoneyRequest) (*model.Payment, error)

	// Process moves a PENDING payment to PROCESSING.
	Process(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error)

	// Confirm completes a PENDING payment and, in the same transaction,
	// advances the linked order to CONFIRMED.
	Confirm(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error)

	// Cancel fails when the payment is already COMPLETED.
	Cancel(ctx context.Context, paymentID uuid.UUID) error

	// Refund is only valid from COMPLETED; the linked order becomes
	// REFUNDED in the same transaction.
	Refund(ctx context.Context, paymentID uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Payment, error)
}

// DonationService manages the donation lifecycle.
type DonationService interface {
	Create(ctx context.Context, req model.CreateDonationRequest) (*model.Donation, error)

	// Confirm moves PENDING to CONFIRMED and notifies the donor.
	Confirm(ctx context.Context, id uuid.UUID) (*model.Donation, error)

	// Start moves CONFIRMED to IN_PROGRESS.
	Start(ctx context.Context, id uuid.UUID) (*model.Donation, error)

	// Complete requires the donation to be CONFIRMED or IN_PROGRESS.
	Complete(ctx context.Context, id uuid.UUID) (*model.Donation, error)

	// Cancel fails when the donation is already COMPLETED.
	Cancel(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Donation, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Donation, error)
	ListByOrphanage(ctx context.Context, orphanageID uuid.UUID) ([]model.Donation, error)

	// ListScheduledToday returns donations with an appointment on the
	// current UTC day.
	ListScheduledToday(ctx context.Context) ([]model.Donation, error)

	// ListOverdue returns non-terminal donations whose appointment has
	// passed.
	ListOverdue(ctx context.Context) ([]model.Donation, error)

	// ApproveOrphanage marks an orphanage as able to receive donations
	// and notifies it of the decision.
	ApproveOrphanage(ctx context.Context, orphanageID, adminID uuid.UUID) (*model.Orphanage, error)

	// RejectOrphanage clears the approval flag and sends the reason to
	// the orphanage. A reason is required.
	RejectOrphanage(ctx context.Context, orphanageID, adminID uuid.UUID, reason string) (*model.Orphanage, error)

	// TotalCashForOrphanage sums COMPLETED donations of type CASH or BOTH.
	TotalCashForOrphanage(ctx context.Context, orphanageID uuid.UUID) (decimal.Decimal, error)

	// TotalCashByClient sums COMPLETED donations of type CASH or BOTH.
	TotalCashByClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)
}

// Note is the content of a notification to be dispatched.
type Note struct {
	Title       string
	Message     string
	Type        string
	RelatedID   *uuid.UUID
	RelatedType string
}

// NotificationService is a fire-and-forget side-effect sink. Notify
// methods deliberately return nothing: dispatch failures are logged and
// swallowed so they can never roll back the triggering transaction.
type NotificationService interface {
	Notify(ctx context.Context, to model.Recipient, note Note)

	// NotifyAllAdmins fans the note out to every registered admin.
	NotifyAllAdmins(ctx context.Context, note Note)

	ListForClient(ctx context.Context, clientID uuid.UUID, unreadOnly bool) ([]model.Notification, error)
	ListForOrphanage(ctx context.Context, orphanageID uuid.UUID, unreadOnly bool) ([]model.Notification, error)

	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllReadForClient(ctx context.Context, clientID uuid.UUID) error

	// SweepOnce deletes read notifications older than the retention age.
	SweepOnce(ctx context.Context) (int64, error)

	// RunRetentionSweep blocks, sweeping at the configured interval until
	// ctx is cancelled.
	RunRetentionSweep(ctx context.Context)
}
