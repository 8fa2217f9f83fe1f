package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout-service/models"
	"checkout-service/repository"
)

// OrderSnapshot is a frozen, priced checkout intent. Line-item prices
// are taken verbatim from the snapshot and never re-read from the
// catalog.
type OrderSnapshot struct {
	OrderID         uuid.UUID
	UserID          *uuid.UUID
	GuestEmail      string
	Items           []models.LineItem
	Summary         PriceSummary
	Method          string
	PaymentStatus   string
	PaymentRef      string
	ShippingAddress string
}

// OrderMaterializer converts a frozen snapshot into durable order rows,
// binding it to committed inventory changes.
type OrderMaterializer struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewOrderMaterializer(products repository.ProductRepository, orders repository.OrderRepository) *OrderMaterializer {
	return &OrderMaterializer{products: products, orders: orders}
}

// Materialize conditionally decrements stock for every line item, then
// writes the order and its items. If any decrement fails, every
// decrement already applied in this attempt is reversed and the whole
// call fails: an order is never created with some items fulfilled and
// others not. Under two concurrent attempts contending for the last
// unit of a product, exactly one succeeds and the counter lands on
// zero, never below.
func (m *OrderMaterializer) Materialize(ctx context.Context, snap *OrderSnapshot) (*models.Order, error) {
	applied := make([]models.LineItem, 0, len(snap.Items))

	for _, item := range snap.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			m.rollback(ctx, applied)
			return nil, fmt.Errorf("%w: bad product id %q", ErrValidation, item.ProductID)
		}

		if err := m.products.ConditionalDecrementStock(ctx, pid, item.Quantity); err != nil {
			m.rollback(ctx, applied)
			if errors.Is(err, repository.ErrInsufficientStock) || errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %s", ErrInsufficientInventory, item.ProductID)
			}
			return nil, err
		}
		applied = append(applied, item)
	}

	order := &models.Order{
		ID:                snap.OrderID,
		OrderNumber:       "ORD-" + time.Now().Format("20060102-150405") + "-" + uuid.New().String()[:8],
		UserID:            snap.UserID,
		GuestEmail:        snap.GuestEmail,
		Subtotal:          snap.Summary.Subtotal,
		Tax:               snap.Summary.Tax,
		Shipping:          snap.Summary.Shipping,
		Amount:            snap.Summary.Total,
		PaymentMethod:     snap.Method,
		PaymentStatus:     snap.PaymentStatus,
		PaymentRef:        snap.PaymentRef,
		FulfillmentStatus: models.FulfillmentStatusPending,
		ShippingAddress:   snap.ShippingAddress,
	}

	items := make([]models.OrderItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		})
	}

	if err := m.orders.Create(ctx, order, items); err != nil {
		m.rollback(ctx, applied)
		return nil, fmt.Errorf("order insert failed: %w", err)
	}

	order.OrderItems = items
	return order, nil
}

// rollback reverses every decrement applied so far with compensating
// increments. Compensation failures are logged; they cannot abort the
// rollback of the remaining items.
func (m *OrderMaterializer) rollback(ctx context.Context, applied []models.LineItem) {
	for _, item := range applied {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			continue
		}
		if err := m.products.IncrementStock(ctx, pid, item.Quantity); err != nil {
			zap.L().Error("stock compensation failed",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}
