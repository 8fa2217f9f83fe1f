package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayGateway implements Gateway using the Razorpay Orders API.
type RazorpayGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   razorpayBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ---- Razorpay API request/response structs ----

type razorpayOrderRequest struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayPaymentResponse struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *RazorpayGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   req.Amount,
		Currency: currency,
		Receipt:  req.OrderID,
	})
	if err != nil {
		return nil, err
	}

	var order razorpayOrderResponse
	if err := g.do(ctx, http.MethodPost, "/orders", bytes.NewReader(body), &order); err != nil {
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	return &InitiateResult{
		TransactionID: order.ID,
		PaymentURL:    fmt.Sprintf("%s/checkout/embedded?order_id=%s", g.baseURL, order.ID),
	}, nil
}

func (g *RazorpayGateway) Verify(ctx context.Context, transactionID string) error {
	var pay razorpayPaymentResponse
	if err := g.do(ctx, http.MethodGet, "/payments/"+transactionID, nil, &pay); err != nil {
		return fmt.Errorf("razorpay payment lookup failed: %w", err)
	}
	if pay.Status != "captured" {
		return fmt.Errorf("razorpay payment %s not captured, status %s", transactionID, pay.Status)
	}
	return nil
}

func (g *RazorpayGateway) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr razorpayErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay API error %s: %s", apiErr.Error.Code, apiErr.Error.Description)
		}
		return fmt.Errorf("razorpay API returned status %d", resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}
