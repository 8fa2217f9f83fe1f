package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment and fulfillment statuses as stored on the order row.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	FulfillmentStatusPending = "pending"
)

type Order struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber       string      `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID            *uuid.UUID  `gorm:"type:uuid;index" json:"user_id,omitempty"`
	GuestEmail        string      `json:"guest_email,omitempty"`
	Subtotal          int         `gorm:"not null" json:"subtotal"`
	Tax               int         `gorm:"not null" json:"tax"`
	Shipping          int         `gorm:"not null" json:"shipping"`
	Amount            int         `gorm:"not null" json:"amount"`
	PaymentMethod     string      `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus     string      `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentRef        string      `json:"payment_ref,omitempty"`
	FulfillmentStatus string      `gorm:"type:varchar(20);not null;default:'pending'" json:"fulfillment_status"`
	ShippingAddress   string      `json:"shipping_address,omitempty"`
	CreatedAt         time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	OrderItems        []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem freezes the unit price at checkout time; later catalog
// price changes never touch it.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     int       `gorm:"not null" json:"price"`
}
