package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by workflow transitions.
const (
	NotificationProductApproved  = "PRODUCT_APPROVED"
	NotificationProductRejected  = "PRODUCT_REJECTED"
	NotificationOrderStatus      = "ORDER_STATUS"
	NotificationNewPayment       = "NEW_PAYMENT"
	NotificationPaymentCompleted = "PAYMENT_COMPLETED"
	NotificationDonationStatus   = "DONATION_STATUS"
	NotificationOrphanageReview  = "ORPHANAGE_REVIEW"
)

// Recipient addresses a notification to exactly one actor.
type Recipient struct {
	ClientID    *uuid.UUID
	AdminID     *uuid.UUID
	OrphanageID *uuid.UUID
}

// ClientRecipient addresses a client.
func ClientRecipient(id uuid.UUID) Recipient { return Recipient{ClientID: &id} }

// AdminRecipient addresses an admin.
func AdminRecipient(id uuid.UUID) Recipient { return Recipient{AdminID: &id} }

// OrphanageRecipient addresses an orphanage.
func OrphanageRecipient(id uuid.UUID) Recipient { return Recipient{OrphanageID: &id} }

// Notification is a fire-and-forget side effect of a workflow transition.
// It is never mutated after creation except to mark it read, and read rows
// are eventually removed by the retention sweep.
type Notification struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Message     string     `json:"message" db:"message"`
	Type        string     `json:"type" db:"type"`
	IsRead      bool       `json:"isRead" db:"is_read"`
	IsSent      bool       `json:"isSent" db:"is_sent"`
	ClientID    *uuid.UUID `json:"clientId,omitempty" db:"client_id"`
	AdminID     *uuid.UUID `json:"adminId,omitempty" db:"admin_id"`
	OrphanageID *uuid.UUID `json:"orphanageId,omitempty" db:"orphanage_id"`
	RelatedID   *uuid.UUID `json:"relatedId,omitempty" db:"related_id"`
	RelatedType string     `json:"relatedType,omitempty" db:"related_type"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}
