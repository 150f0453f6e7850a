package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment state machine.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusProcessing: {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusCompleted:  {PaymentStatusRefunded},
	PaymentStatusFailed:     {},
	PaymentStatusCancelled:  {},
	PaymentStatusRefunded:   {},
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Live reports whether the payment still counts against the one-payment-
// per-order rule.
func (s PaymentStatus) Live() bool {
	return s != PaymentStatusCancelled
}

// PaymentMethod identifies how a payment is made.
type PaymentMethod string

const (
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_PAYMENT"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// Payment is a standalone payment, optionally linked to an order. At most
// one non-cancelled payment may exist per order.
type Payment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ClientID      uuid.UUID       `json:"clientId" db:"client_id"`
	OrderID       *uuid.UUID      `json:"orderId,omitempty" db:"order_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Method        PaymentMethod   `json:"method" db:"method"`
	Status        PaymentStatus   `json:"status" db:"status"`
	TransactionID string          `json:"transactionId" db:"transaction_id"`
	PhoneNumber   string          `json:"phoneNumber,omitempty" db:"phone_number"`
	Provider      string          `json:"provider,omitempty" db:"provider"`
	Description   string          `json:"description,omitempty" db:"description"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// CreatePaymentRequest is the payload for initiating a payment.
type CreatePaymentRequest struct {
	ClientID    uuid.UUID       `json:"clientId" validate:"required"`
	OrderID     *uuid.UUID      `json:"orderId,omitempty"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Method      PaymentMethod   `json:"method" validate:"required"`
	PhoneNumber string          `json:"phoneNumber"`
	Provider    string          `json:"provider" validate:"omitempty,oneof=MTN ORANGE"`
	Description string          `json:"description"`
}

// MobileMoneyRequest is the payload for the mobile-money flow.
type MobileMoneyRequest struct {
	ClientID    uuid.UUID       `json:"clientId" validate:"required"`
	OrderID     *uuid.UUID      `json:"orderId,omitempty"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PhoneNumber string          `json:"phoneNumber" validate:"required"`
	Provider    string          `json:"provider" validate:"required,oneof=MTN ORANGE"`
}
