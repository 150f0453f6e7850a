package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a registered buyer/seller actor. Credentials live in the
// identity store and are never handled here.
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Admin is a moderating actor with approval authority over products and
// orphanages.
type Admin struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Orphanage is a donation-receiving actor. It must be approved by an admin
// before appearing publicly.
type Orphanage struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Email      string     `json:"email" db:"email"`
	Location   string     `json:"location" db:"location"`
	IsApproved bool       `json:"isApproved" db:"is_approved"`
	ApprovedBy *uuid.UUID `json:"approvedBy,omitempty" db:"approved_by"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}
