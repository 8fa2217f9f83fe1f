package models

import "time"

// OrderConfirmedEvent is published after an order is materialized, for
// the notification pipeline to pick up. Delivery is best-effort.
type OrderConfirmedEvent struct {
	Event       string    `json:"event"` // "order.confirmed"
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id,omitempty"`
	Recipient   string    `json:"recipient,omitempty"`
	Amount      int       `json:"amount"`
	Method      string    `json:"method"`
	Timestamp   time.Time `json:"timestamp"`
}
