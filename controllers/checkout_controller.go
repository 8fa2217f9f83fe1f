package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"checkout-service/middleware"
	"checkout-service/repository"
	"checkout-service/services"
)

type CheckoutController struct {
	Checkout *services.CheckoutService
	Orders   repository.OrderRepository
}

func NewCheckoutController(checkout *services.CheckoutService, orders repository.OrderRepository) *CheckoutController {
	return &CheckoutController{Checkout: checkout, Orders: orders}
}

// InitiateCheckout validates and prices the submitted cart, then either
// creates the order directly (pay on delivery) or starts a gateway
// transaction.
func (cc *CheckoutController) InitiateCheckout(c *gin.Context) {
	var req services.InitiateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = middleware.GetUserID(c)

	resp, err := cc.Checkout.InitiateCheckout(c.Request.Context(), &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if resp.OrderCreated {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

type verifyPaymentRequest struct {
	OrderID       string `json:"order_id" binding:"required"`
	TransactionID string `json:"transaction_id" binding:"required"`
}

// VerifyPayment confirms a gateway transaction and converts the
// checkout session into an order.
func (cc *CheckoutController) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := cc.Checkout.VerifyPayment(c.Request.Context(), req.TransactionID, req.OrderID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder returns a created order for the confirmation screen.
func (cc *CheckoutController) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := cc.Orders.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// statusForError maps the checkout error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrInsufficientInventory):
		return http.StatusConflict
	case errors.Is(err, services.ErrPaymentInitiationFailed),
		errors.Is(err, services.ErrPaymentVerificationFailed):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrSessionExpiredOrNotFound):
		return http.StatusGone
	case errors.Is(err, services.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
