package repository

import (
	"context"
	"errors"
	"time"

	"jalai-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrUniqueViolation is returned when an insert breaks a uniqueness
// constraint, e.g. a second live payment for the same order.
var ErrUniqueViolation = errors.New("unique constraint violation")

// TxBeginner starts database transactions for units of work that span
// multiple repositories.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// ActorRepository defines lookups over clients, admins and orphanages. The
// core never touches credentials; identity management lives elsewhere.
type ActorRepository interface {
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ClientExists(ctx context.Context, id uuid.UUID) (bool, error)

	GetAdmin(ctx context.Context, id uuid.UUID) (*model.Admin, error)
	AdminExists(ctx context.Context, id uuid.UUID) (bool, error)
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)

	GetOrphanage(ctx context.Context, id uuid.UUID) (*model.Orphanage, error)
	OrphanageExists(ctx context.Context, id uuid.UUID) (bool, error)

	// ApproveOrphanage flips the approval flag for a not-yet-approved
	// orphanage. Returns false when no row was updated.
	ApproveOrphanage(ctx context.Context, orphanageID, adminID uuid.UUID) (bool, error)

	// RejectOrphanage clears the approval flag and records the reviewing
	// admin. Returns false when the orphanage does not exist.
	RejectOrphanage(ctx context.Context, orphanageID, adminID uuid.UUID) (bool, error)
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetForUpdate locks the product row within the given transaction.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error)

	// UpdateContent rewrites the editable fields and resets the approval
	// gate. Returns false when the product does not exist.
	UpdateContent(ctx context.Context, p *model.Product) (bool, error)

	// Approve sets the approval flag for a currently-unapproved product.
	// Returns false when no row matched the guard.
	Approve(ctx context.Context, productID, adminID uuid.UUID) (bool, error)

	// Reject clears the approval flag and withdraws the product from sale.
	Reject(ctx context.Context, productID, adminID uuid.UUID) (bool, error)

	SetAvailability(ctx context.Context, id uuid.UUID, available bool) (bool, error)

	// MarkDonated is one-way: the product also becomes unavailable.
	MarkDonated(ctx context.Context, id uuid.UUID) (bool, error)

	ListApproved(ctx context.Context, limit, offset int) ([]model.Product, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error)
	SearchByName(ctx context.Context, name string, limit, offset int) ([]model.Product, error)

	// ListByPriceRange returns approved products priced within [min, max].
	ListByPriceRange(ctx context.Context, min, max decimal.Decimal, limit, offset int) ([]model.Product, error)

	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// CartRepository defines the interface for cart line data access. Lines are
// keyed by the (client, product) pair.
type CartRepository interface {
	// AddOrIncrement inserts a new line or adds to the quantity of an
	// existing one, keeping the originally snapshotted unit price. The
	// resulting line is returned.
	AddOrIncrement(ctx context.Context, line *model.CartLine) (*model.CartLine, error)

	// SetQuantity replaces the quantity of an existing line. Returns false
	// when the line does not exist.
	SetQuantity(ctx context.Context, clientID, productID uuid.UUID, quantity int) (bool, error)

	// Remove deletes one line. Returns false when the line did not exist.
	Remove(ctx context.Context, clientID, productID uuid.UUID) (bool, error)

	// Clear deletes all lines for a client. Clearing an empty cart is a
	// no-op.
	Clear(ctx context.Context, clientID uuid.UUID) error

	// DeleteLinesTx deletes exactly the given lines. Checkout uses it so
	// a line added after the cart was locked survives for the next order.
	DeleteLinesTx(ctx context.Context, tx pgx.Tx, lineIDs []uuid.UUID) error

	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.CartLine, error)

	// ListForUpdate locks the client's lines within the given transaction
	// so a concurrent checkout cannot clear a cart another request is
	// totalling.
	ListForUpdate(ctx context.Context, tx pgx.Tx, clientID uuid.UUID) ([]model.CartLine, error)

	// Total returns the sum of quantity x snapshotted unit price, zero for
	// an empty cart.
	Total(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)

	// CountItems returns the total quantity across all lines.
	CountItems(ctx context.Context, clientID uuid.UUID) (int64, error)
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error
	CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error

	Delete(ctx context.Context, id uuid.UUID) error

	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Order, error)
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)

	// TotalSalesForSeller sums DELIVERED orders only.
	TotalSalesForSeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)

	// TotalPurchasesForClient sums DELIVERED orders only.
	TotalPurchasesForClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)
}

// PaymentRepository defines the interface for payment data access.
type PaymentRepository interface {
	// Create inserts a new payment. ErrUniqueViolation is returned when the
	// linked order already holds a live payment.
	Create(ctx context.Context, p *model.Payment) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error)

	// GetLiveByOrderID returns the non-cancelled payment for an order, or
	// nil when there is none.
	GetLiveByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Payment, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus) error

	// SetProviderResult records the provider outcome: final status plus the
	// provider-issued transaction id.
	SetProviderResult(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus, transactionID string) error

	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Payment, error)
	ListByStatus(ctx context.Context, status model.PaymentStatus) ([]model.Payment, error)
}

// DonationRepository defines the interface for donation data access.
type DonationRepository interface {
	Create(ctx context.Context, d *model.Donation) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Donation, error)

	// UpdateStatusFrom moves a donation to the target status only when its
	// current status is one of from. Returns false when the guard did not
	// match.
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []model.DonationStatus, to model.DonationStatus, confirmed bool) (bool, error)

	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Donation, error)
	ListByOrphanage(ctx context.Context, orphanageID uuid.UUID) ([]model.Donation, error)
	ListByStatus(ctx context.Context, status model.DonationStatus) ([]model.Donation, error)
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]model.Donation, error)

	// TotalCashForOrphanage sums COMPLETED donations of type CASH or BOTH.
	TotalCashForOrphanage(ctx context.Context, orphanageID uuid.UUID) (decimal.Decimal, error)

	// TotalCashByClient sums COMPLETED donations of type CASH or BOTH.
	TotalCashByClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)
}

// NotificationRepository defines the interface for notification data access.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error

	ListForClient(ctx context.Context, clientID uuid.UUID, unreadOnly bool) ([]model.Notification, error)
	ListForAdmin(ctx context.Context, adminID uuid.UUID, unreadOnly bool) ([]model.Notification, error)
	ListForOrphanage(ctx context.Context, orphanageID uuid.UUID, unreadOnly bool) ([]model.Notification, error)

	MarkRead(ctx context.Context, id uuid.UUID) (bool, error)
	MarkAllReadForClient(ctx context.Context, clientID uuid.UUID) error

	// DeleteReadOlderThan removes read notifications created before cutoff
	// and reports how many were deleted.
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
