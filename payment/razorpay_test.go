package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRazorpay(baseURL string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:      "rzp_test_key",
		keySecret:  "secret",
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestRazorpayInitiateCreatesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var req razorpayOrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 5450, req.Amount)

		json.NewEncoder(w).Encode(razorpayOrderResponse{
			ID:       "order_Nxyz123",
			Amount:   req.Amount,
			Currency: req.Currency,
			Status:   "created",
		})
	}))
	defer srv.Close()

	g := newTestRazorpay(srv.URL)
	res, err := g.Initiate(context.Background(), InitiateRequest{
		OrderID: "abc-123",
		Amount:  5450,
	})

	assert.NoError(t, err)
	assert.Equal(t, "order_Nxyz123", res.TransactionID)
	assert.Contains(t, res.PaymentURL, "order_Nxyz123")
}

func TestRazorpayInitiateSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"code":        "BAD_REQUEST_ERROR",
				"description": "amount must be at least 100",
			},
		})
	}))
	defer srv.Close()

	g := newTestRazorpay(srv.URL)
	_, err := g.Initiate(context.Background(), InitiateRequest{OrderID: "abc", Amount: 1})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}

func TestRazorpayVerifyCaptured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/pay_123", r.URL.Path)
		json.NewEncoder(w).Encode(razorpayPaymentResponse{
			ID:     "pay_123",
			Status: "captured",
		})
	}))
	defer srv.Close()

	g := newTestRazorpay(srv.URL)
	assert.NoError(t, g.Verify(context.Background(), "pay_123"))
}

func TestRazorpayVerifyRejectsUncaptured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(razorpayPaymentResponse{
			ID:     "pay_123",
			Status: "failed",
		})
	}))
	defer srv.Close()

	g := newTestRazorpay(srv.URL)
	err := g.Verify(context.Background(), "pay_123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not captured")
}

func TestMethodClassification(t *testing.T) {
	assert.True(t, MethodStripe.Valid())
	assert.True(t, MethodRazorpay.Valid())
	assert.True(t, MethodCOD.Valid())
	assert.False(t, Method("paypal").Valid())

	assert.True(t, MethodStripe.Online())
	assert.True(t, MethodRazorpay.Online())
	assert.False(t, MethodCOD.Online())
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	g := newTestRazorpay("http://localhost")
	r.Register(MethodRazorpay, g)

	got, err := r.Get(MethodRazorpay)
	assert.NoError(t, err)
	assert.Equal(t, Gateway(g), got)

	_, err = r.Get(MethodStripe)
	assert.Error(t, err)
}
