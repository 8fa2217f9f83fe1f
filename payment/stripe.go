package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// StripeGateway implements Gateway using Stripe PaymentIntents.
type StripeGateway struct {
	secretKey string
	currency  string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{secretKey: secretKey, currency: currency}
}

func (g *StripeGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = g.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(req.Amount)),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)
	if req.Customer.Email != "" {
		params.ReceiptEmail = stripe.String(req.Customer.Email)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent creation failed: %w", err)
	}

	return &InitiateResult{
		TransactionID: pi.ID,
		ClientSecret:  pi.ClientSecret,
	}, nil
}

func (g *StripeGateway) Verify(ctx context.Context, transactionID string) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(transactionID, params)
	if err != nil {
		return fmt.Errorf("stripe payment intent lookup failed: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("stripe payment %s not settled, status %s", transactionID, pi.Status)
	}
	return nil
}
