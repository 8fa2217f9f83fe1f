package models

import "time"

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is keyed by its owner: an authenticated user ID or a guest
// session ID.
type Cart struct {
	OwnerID   string     `json:"owner_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}
