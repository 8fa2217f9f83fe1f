package models

import "time"

// LineItem is a price-snapshotted cart line held by a checkout session.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
}

// CheckoutSession captures a priced, validated cart between payment
// initiation and confirmation. It is stored in Redis with a bounded TTL
// and consumed exactly once by payment verification.
type CheckoutSession struct {
	OrderID         string     `json:"order_id"`
	UserID          string     `json:"user_id,omitempty"`
	GuestEmail      string     `json:"guest_email,omitempty"`
	LineItems       []LineItem `json:"line_items"`
	Subtotal        int        `json:"subtotal"`
	Tax             int        `json:"tax"`
	Shipping        int        `json:"shipping"`
	Amount          int        `json:"amount"`
	ShippingAddress string     `json:"shipping_address,omitempty"`
	Method          string     `json:"method"`
	TransactionID   string     `json:"transaction_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
}

// Expired reports whether the session has passed its deadline. The
// session TTL is the sole timeout for a checkout: once it passes,
// verification is refused even if the external payment later succeeded.
func (s *CheckoutSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
