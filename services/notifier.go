package services

import (
	"context"

	"checkout-service/models"
)

// Notifier delivers the post-order confirmation. The orchestrator fires
// it in the background and never lets a delivery failure roll back an
// otherwise successful order.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order, recipient string) error
}
