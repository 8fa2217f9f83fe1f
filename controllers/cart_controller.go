package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"checkout-service/middleware"
	"checkout-service/models"
	"checkout-service/services"
)

type CartController struct {
	Carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{Carts: carts}
}

// GetCart returns the priced cart view for the caller.
func (cc *CartController) GetCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := cc.Carts.UserCartView(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddItem adds or accumulates an item in the caller's cart. Guests get
// a session-scoped cart.
func (cc *CartController) AddItem(c *gin.Context) {
	var item models.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()
	if userID := middleware.GetUserID(c); userID != "" {
		if err := cc.Carts.AddUserItem(ctx, userID, item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
			return
		}
	} else if sessionID := middleware.GetGuestSession(c); sessionID != "" {
		if err := cc.Carts.AddGuestItem(ctx, sessionID, item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
			return
		}
	} else {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item added"})
}

// ClearCart removes all items from the caller's cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := cc.Carts.ClearUserCart(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// MergeCart folds the caller's guest cart into their user cart after
// sign-in.
func (cc *CartController) MergeCart(c *gin.Context) {
	userID := middleware.GetUserID(c)
	sessionID := middleware.GetGuestSession(c)
	if userID == "" || sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "both a user and a guest session are required"})
		return
	}

	if err := cc.Carts.MergeGuestCartToUser(c.Request.Context(), sessionID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to merge carts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "carts merged"})
}
