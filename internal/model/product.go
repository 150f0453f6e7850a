package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a seller-listed item. Every product enters the catalogue
// unapproved and becomes publicly visible only after an admin approves it.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
	IsAvailable bool            `json:"isAvailable" db:"is_available"`
	IsApproved  bool            `json:"isApproved" db:"is_approved"`
	IsDonated   bool            `json:"isDonated" db:"is_donated"`
	SellerID    uuid.UUID       `json:"sellerId" db:"seller_id"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty" db:"category_id"`
	ApprovedBy  *uuid.UUID      `json:"approvedBy,omitempty" db:"approved_by"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Purchasable reports whether the product may be added to a cart or pass
// checkout validation.
func (p *Product) Purchasable() bool {
	return p.IsAvailable && p.IsApproved && !p.IsDonated
}

// Category groups products for browsing.
type Category struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// SubmitProductRequest is the payload for listing a new product.
type SubmitProductRequest struct {
	SellerID    uuid.UUID       `json:"sellerId" validate:"required"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	ImageURL    string          `json:"imageUrl"`
}

// UpdateProductRequest is the payload for editing product content. Any
// content edit sends the product back through the approval gate.
type UpdateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	ImageURL    string          `json:"imageUrl"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty"`
}

// ReviewProductRequest is the payload for an admin approval or rejection.
type ReviewProductRequest struct {
	AdminID uuid.UUID `json:"adminId" validate:"required"`
	Reason  string    `json:"reason"`
}
