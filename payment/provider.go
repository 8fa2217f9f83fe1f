package payment

import (
	"context"
	"fmt"
)

// Method identifies how a checkout is paid for. Gateways are selected
// by this tag, never by structural inspection of the provider.
type Method string

const (
	MethodStripe   Method = "stripe"
	MethodRazorpay Method = "razorpay"
	MethodCOD      Method = "cod"
)

// Valid reports whether m names a known payment method.
func (m Method) Valid() bool {
	switch m {
	case MethodStripe, MethodRazorpay, MethodCOD:
		return true
	}
	return false
}

// Online reports whether m requires an external gateway round-trip.
// Pay-on-delivery settles manually and never waits on verification.
func (m Method) Online() bool {
	return m == MethodStripe || m == MethodRazorpay
}

// CustomerInfo carries the identity a gateway may need for a charge.
type CustomerInfo struct {
	UserID string
	Email  string
}

type InitiateRequest struct {
	OrderID  string
	Amount   int
	Currency string
	Customer CustomerInfo
}

type InitiateResult struct {
	TransactionID string
	PaymentURL    string
	ClientSecret  string
}

// Gateway is the uniform initiate/verify contract over heterogeneous
// payment providers.
type Gateway interface {
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	Verify(ctx context.Context, transactionID string) error
}

// Registry holds one gateway per online method.
type Registry struct {
	gateways map[Method]Gateway
}

func NewRegistry() *Registry {
	return &Registry{gateways: make(map[Method]Gateway)}
}

func (r *Registry) Register(m Method, g Gateway) {
	r.gateways[m] = g
}

func (r *Registry) Get(m Method) (Gateway, error) {
	g, ok := r.gateways[m]
	if !ok {
		return nil, fmt.Errorf("no gateway registered for method %q", m)
	}
	return g, nil
}
