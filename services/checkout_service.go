package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout-service/models"
	"checkout-service/payment"
	"checkout-service/repository"
)

// CheckoutItem is one requested cart line at initiation time.
type CheckoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type InitiateCheckoutRequest struct {
	Items           []CheckoutItem `json:"items" binding:"required,dive"`
	Method          payment.Method `json:"method" binding:"required"`
	UserID          string         `json:"-"`
	GuestEmail      string         `json:"guest_email,omitempty"`
	ShippingAddress string         `json:"shipping_address,omitempty"`
}

type InitiateCheckoutResponse struct {
	OrderID       string `json:"order_id"`
	OrderCreated  bool   `json:"order_created"`
	TransactionID string `json:"transaction_id,omitempty"`
	PaymentURL    string `json:"payment_url,omitempty"`
	ClientSecret  string `json:"client_secret,omitempty"`
	Amount        int    `json:"amount"`
}

// CheckoutService is the state machine driving a checkout from cart
// validation through payment to a durable order.
type CheckoutService struct {
	products     repository.ProductRepository
	sessions     repository.SessionStore
	carts        repository.CartStore
	pricer       *Pricer
	gateways     *payment.Registry
	materializer *OrderMaterializer
	notifier     Notifier
	sessionTTL   time.Duration
}

func NewCheckoutService(
	products repository.ProductRepository,
	sessions repository.SessionStore,
	carts repository.CartStore,
	pricer *Pricer,
	gateways *payment.Registry,
	materializer *OrderMaterializer,
	notifier Notifier,
	sessionTTL time.Duration,
) *CheckoutService {
	return &CheckoutService{
		products:     products,
		sessions:     sessions,
		carts:        carts,
		pricer:       pricer,
		gateways:     gateways,
		materializer: materializer,
		notifier:     notifier,
		sessionTTL:   sessionTTL,
	}
}

// InitiateCheckout validates every line item before any side effect,
// prices the cart, and either materializes the order synchronously
// (pay on delivery) or initiates a gateway transaction and persists a
// checkout session. A failed initiation leaves no partial state.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, req *InitiateCheckoutRequest) (*InitiateCheckoutResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	if !req.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.Method)
	}
	if req.UserID == "" && req.GuestEmail == "" {
		return nil, fmt.Errorf("%w: a user or guest email is required", ErrValidation)
	}

	var userUUID *uuid.UUID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
		}
		userUUID = &parsed
	}

	// Validate the whole cart before touching anything; a partial
	// validation failure aborts the checkout with zero side effects.
	lineItems := make([]models.LineItem, 0, len(req.Items))
	subtotal := 0
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: invalid quantity for product %s", ErrValidation, item.ProductID)
		}
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product id %q", ErrValidation, item.ProductID)
		}

		product, err := s.products.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
		}
		// Advisory check only; the binding check is the conditional
		// decrement at materialization time.
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s has %d left", ErrInsufficientInventory, product.Name, product.Stock)
		}

		lineItems = append(lineItems, models.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		subtotal += item.Quantity * product.Price
	}

	summary := s.pricer.Price(ctx, subtotal)
	orderID := uuid.New()

	if req.Method == payment.MethodCOD {
		order, err := s.materializer.Materialize(ctx, &OrderSnapshot{
			OrderID:         orderID,
			UserID:          userUUID,
			GuestEmail:      req.GuestEmail,
			Items:           lineItems,
			Summary:         summary,
			Method:          string(req.Method),
			PaymentStatus:   models.PaymentStatusPending,
			ShippingAddress: req.ShippingAddress,
		})
		if err != nil {
			return nil, err
		}

		s.afterOrderCreated(ctx, order, req.UserID, req.GuestEmail)
		return &InitiateCheckoutResponse{
			OrderID:      order.ID.String(),
			OrderCreated: true,
			Amount:       order.Amount,
		}, nil
	}

	gateway, err := s.gateways.Get(req.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentInitiationFailed, err)
	}

	initiated, err := gateway.Initiate(ctx, payment.InitiateRequest{
		OrderID: orderID.String(),
		Amount:  summary.Total,
		Customer: payment.CustomerInfo{
			UserID: req.UserID,
			Email:  req.GuestEmail,
		},
	})
	if err != nil {
		zap.L().Warn("payment initiation failed",
			zap.String("order_id", orderID.String()),
			zap.String("method", string(req.Method)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPaymentInitiationFailed, err)
	}

	now := time.Now()
	session := &models.CheckoutSession{
		OrderID:         orderID.String(),
		UserID:          req.UserID,
		GuestEmail:      req.GuestEmail,
		LineItems:       lineItems,
		Subtotal:        summary.Subtotal,
		Tax:             summary.Tax,
		Shipping:        summary.Shipping,
		Amount:          summary.Total,
		ShippingAddress: req.ShippingAddress,
		Method:          string(req.Method),
		TransactionID:   initiated.TransactionID,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.sessionTTL),
	}

	// Without the session there is no way to materialize the order when
	// the payment confirms, so persistence failure is fatal here. The
	// caller must retry the checkout.
	if err := s.sessions.Save(ctx, session); err != nil {
		zap.L().Error("checkout session persistence failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: checkout could not be saved, please retry", ErrStorageUnavailable)
	}

	return &InitiateCheckoutResponse{
		OrderID:       orderID.String(),
		OrderCreated:  false,
		TransactionID: initiated.TransactionID,
		PaymentURL:    initiated.PaymentURL,
		ClientSecret:  initiated.ClientSecret,
		Amount:        summary.Total,
	}, nil
}

// VerifyPayment confirms a gateway transaction and converts the
// checkout session into a durable order, exactly once. Deleting the
// session after materialization is the commit point: a repeated call
// for the same order deterministically fails with session-not-found.
func (s *CheckoutService) VerifyPayment(ctx context.Context, transactionID, orderID string) (*models.Order, error) {
	session, err := s.sessions.Find(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s", ErrSessionExpiredOrNotFound, orderID)
	}
	if session.Expired(time.Now()) {
		return nil, fmt.Errorf("%w: order %s", ErrSessionExpiredOrNotFound, orderID)
	}

	gateway, err := s.gateways.Get(payment.Method(session.Method))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentVerificationFailed, err)
	}

	// On verification failure the session is left intact: a legitimate
	// retry with a corrected transaction id can still succeed before
	// the session expires.
	if err := gateway.Verify(ctx, transactionID); err != nil {
		zap.L().Warn("payment verification failed",
			zap.String("order_id", orderID),
			zap.String("transaction_id", transactionID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPaymentVerificationFailed, err)
	}

	var userUUID *uuid.UUID
	if session.UserID != "" {
		if parsed, err := uuid.Parse(session.UserID); err == nil {
			userUUID = &parsed
		}
	}

	orderUUID, err := uuid.Parse(session.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt session order id", ErrSessionExpiredOrNotFound)
	}

	order, err := s.materializer.Materialize(ctx, &OrderSnapshot{
		OrderID:    orderUUID,
		UserID:     userUUID,
		GuestEmail: session.GuestEmail,
		Items:      session.LineItems,
		Summary: PriceSummary{
			Subtotal: session.Subtotal,
			Tax:      session.Tax,
			Shipping: session.Shipping,
			Total:    session.Amount,
		},
		Method:          session.Method,
		PaymentStatus:   models.PaymentStatusPaid,
		PaymentRef:      transactionID,
		ShippingAddress: session.ShippingAddress,
	})
	if err != nil {
		return nil, err
	}

	// Commit point: once the session is gone, at most one order exists
	// for it and any replay hits the not-found branch above.
	if err := s.sessions.Delete(ctx, orderID); err != nil {
		zap.L().Error("session delete failed after order creation, replays may be rejected late",
			zap.String("order_id", orderID),
			zap.Error(err))
	}

	s.afterOrderCreated(ctx, order, session.UserID, session.GuestEmail)
	return order, nil
}

// afterOrderCreated clears the buyer's live cart and fires the order
// confirmation. Both are best-effort; neither can fail the order. The
// notification is the one fire-and-forget step in the whole pipeline.
func (s *CheckoutService) afterOrderCreated(ctx context.Context, order *models.Order, userID, guestEmail string) {
	if userID != "" {
		if err := s.carts.ClearUserCart(ctx, userID); err != nil {
			zap.L().Warn("cart clear after order failed",
				zap.String("user_id", userID), zap.Error(err))
		}
		s.carts.InvalidateUserViews(ctx, userID)
	}

	if s.notifier == nil {
		return
	}
	recipient := guestEmail
	if recipient == "" {
		recipient = userID
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.notifier.SendOrderConfirmation(bgCtx, order, recipient); err != nil {
			zap.L().Warn("order confirmation delivery failed",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}()
}
