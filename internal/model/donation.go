package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationStatus is the donation state machine.
type DonationStatus string

const (
	DonationStatusPending    DonationStatus = "PENDING"
	DonationStatusConfirmed  DonationStatus = "CONFIRMED"
	DonationStatusInProgress DonationStatus = "IN_PROGRESS"
	DonationStatusCompleted  DonationStatus = "COMPLETED"
	DonationStatusCancelled  DonationStatus = "CANCELLED"
)

var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationStatusPending:    {DonationStatusConfirmed, DonationStatusCancelled},
	DonationStatusConfirmed:  {DonationStatusInProgress, DonationStatusCompleted, DonationStatusCancelled},
	DonationStatusInProgress: {DonationStatusCompleted, DonationStatusCancelled},
	DonationStatusCompleted:  {},
	DonationStatusCancelled:  {},
}

// Valid reports whether s is a known donation status.
func (s DonationStatus) Valid() bool {
	_, ok := donationTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	for _, allowed := range donationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DonationType determines which fields a donation must carry.
type DonationType string

const (
	DonationTypeCash DonationType = "CASH"
	DonationTypeKind DonationType = "KIND"
	DonationTypeBoth DonationType = "BOTH"
)

// Donation is a scheduled gift from a client to an orphanage.
type Donation struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	ClientID        uuid.UUID        `json:"clientId" db:"client_id"`
	OrphanageID     uuid.UUID        `json:"orphanageId" db:"orphanage_id"`
	Type            DonationType     `json:"type" db:"donation_type"`
	Status          DonationStatus   `json:"status" db:"status"`
	IsConfirmed     bool             `json:"isConfirmed" db:"is_confirmed"`
	CashAmount      *decimal.Decimal `json:"cashAmount,omitempty" db:"cash_amount"`
	ItemDescription string           `json:"itemDescription,omitempty" db:"item_description"`
	AppointmentDate *time.Time       `json:"appointmentDate,omitempty" db:"appointment_date"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// ValidateFields checks the type-dependent required fields. It is enforced
// before persistence, not just at the API boundary.
func (d *Donation) ValidateFields() error {
	hasCash := d.CashAmount != nil && d.CashAmount.IsPositive()
	hasItems := strings.TrimSpace(d.ItemDescription) != ""

	switch d.Type {
	case DonationTypeCash:
		if !hasCash {
			return ValidationError("a positive cash amount is required for cash donations")
		}
	case DonationTypeKind:
		if !hasItems {
			return ValidationError("an item description is required for kind donations")
		}
	case DonationTypeBoth:
		if !hasCash && !hasItems {
			return ValidationError("either a cash amount or an item description is required for combined donations")
		}
	default:
		return ValidationError("unknown donation type %q", d.Type)
	}
	return nil
}

// CountsAsCash reports whether the donation contributes to cash totals.
func (d *Donation) CountsAsCash() bool {
	return (d.Type == DonationTypeCash || d.Type == DonationTypeBoth) && d.CashAmount != nil
}

// CreateDonationRequest is the payload for scheduling a donation.
type CreateDonationRequest struct {
	ClientID        uuid.UUID        `json:"clientId" validate:"required"`
	OrphanageID     uuid.UUID        `json:"orphanageId" validate:"required"`
	Type            DonationType     `json:"type" validate:"required,oneof=CASH KIND BOTH"`
	CashAmount      *decimal.Decimal `json:"cashAmount,omitempty"`
	ItemDescription string           `json:"itemDescription"`
	AppointmentDate *time.Time       `json:"appointmentDate,omitempty"`
}
