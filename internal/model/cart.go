package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one (client, product) pairing in a shopping cart. UnitPrice
// is captured when the line is first created; later product price changes
// do not retroactively change the cart total.
type CartLine struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	ClientID  uuid.UUID       `json:"clientId" db:"client_id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// LineTotal returns quantity x snapshotted unit price.
func (l *CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartItemRequest is the payload for adding to or updating a cart.
type CartItemRequest struct {
	ClientID  uuid.UUID `json:"clientId" validate:"required"`
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CartView is the read model for a client's cart.
type CartView struct {
	ClientID uuid.UUID       `json:"clientId"`
	Lines    []CartLine      `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}
