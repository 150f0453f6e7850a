package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the order state machine.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// orderTransitions is the happy path plus cancellation. REFUNDED is only
// reachable through a payment refund, never via UpdateStatus.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is an adjacent,
// legal transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// Order is an immutable line-item snapshot of a checked-out cart. Items are
// never mutated after creation; corrections require cancellation and a new
// order.
type Order struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ClientID     uuid.UUID       `json:"clientId" db:"client_id"`
	SellerID     uuid.UUID       `json:"sellerId" db:"seller_id"`
	Status       OrderStatus     `json:"status" db:"status"`
	TotalAmount  decimal.Decimal `json:"totalAmount" db:"total_amount"`
	DeliveryDate time.Time       `json:"deliveryDate" db:"delivery_date"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is one frozen line of an order, including the product name at
// the time of purchase.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID   uuid.UUID       `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	LineTotal   decimal.Decimal `json:"lineTotal" db:"line_total"`
}

// CheckoutRequest is the payload for converting a cart into an order.
type CheckoutRequest struct {
	ClientID     uuid.UUID `json:"clientId" validate:"required"`
	DeliveryDate time.Time `json:"deliveryDate" validate:"required"`
}

// OrderStatusRequest is the payload for an order status update.
type OrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

// OrderResponse is an order together with its items.
type OrderResponse struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
