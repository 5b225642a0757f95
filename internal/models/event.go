package models

import "time"

const (
	ProductCreated  = "product.created"
	ProductUpdated  = "product.updated"
	ProductDeleted  = "product.deleted"
	ProductRestored = "product.restored"
)

// ProductEvent is published after every successful product mutation.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"productId"`
	Product    *Product  `json:"product,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
