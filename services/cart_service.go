package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout-service/cache"
	"checkout-service/models"
	"checkout-service/repository"
)

const cartViewTTL = 5 * time.Minute

// CartView is a priced rendering of a cart, cached under the owner's
// view tag so cart mutations can sweep it.
type CartView struct {
	Items    []CartViewItem `json:"items"`
	Subtotal int            `json:"subtotal"`
}

type CartViewItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
}

// CartService wraps the cart store with merge and priced-view logic.
type CartService struct {
	carts    repository.CartStore
	products repository.ProductRepository
	cache    *cache.Cache
}

func NewCartService(carts repository.CartStore, products repository.ProductRepository, c *cache.Cache) *CartService {
	return &CartService{carts: carts, products: products, cache: c}
}

// MergeGuestCartToUser folds a guest session's cart into the signed-in
// user's cart, accumulating quantities for shared products. A failure
// on one item is logged and skipped, never allowed to abort the
// remaining items. Afterwards the guest cart is cleared and both owners'
// cached cart views are invalidated by tag.
func (s *CartService) MergeGuestCartToUser(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" || userID == "" {
		return fmt.Errorf("%w: session and user are required", ErrValidation)
	}

	guestCart, err := s.carts.GetGuestCart(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("guest cart read failed: %w", err)
	}

	merged := 0
	for _, item := range guestCart.Items {
		if err := s.carts.AddUserItem(ctx, userID, item); err != nil {
			zap.L().Warn("cart merge skipped item",
				zap.String("user_id", userID),
				zap.String("product_id", item.ProductID),
				zap.Error(err))
			continue
		}
		merged++
	}

	if err := s.carts.ClearGuestCart(ctx, sessionID); err != nil {
		zap.L().Warn("guest cart clear failed after merge",
			zap.String("session_id", sessionID), zap.Error(err))
	}

	s.carts.InvalidateGuestViews(ctx, sessionID)
	s.carts.InvalidateUserViews(ctx, userID)

	zap.L().Info("guest cart merged",
		zap.String("user_id", userID),
		zap.Int("items_merged", merged),
		zap.Int("items_total", len(guestCart.Items)))
	return nil
}

// UserCartView returns the priced cart for a user, read through the
// cache. Cache misses and failures fall back to a live rebuild.
func (s *CartService) UserCartView(ctx context.Context, userID string) (*CartView, error) {
	cacheKey := "cartview:user:" + userID + ":priced"

	var view CartView
	if s.cache.Get(ctx, cacheKey, &view) {
		return &view, nil
	}

	cart, err := s.carts.GetUserCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	built := s.buildView(ctx, cart)
	_ = s.cache.Set(ctx, cacheKey, built, cartViewTTL, repository.UserCartViewTag(userID))
	return built, nil
}

func (s *CartService) buildView(ctx context.Context, cart *models.Cart) *CartView {
	view := &CartView{Items: []CartViewItem{}}
	for _, item := range cart.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			continue
		}
		product, err := s.products.FindByID(ctx, pid)
		if err != nil {
			zap.L().Warn("cart view skipped unknown product",
				zap.String("product_id", item.ProductID), zap.Error(err))
			continue
		}
		view.Items = append(view.Items, CartViewItem{
			ProductID: item.ProductID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		view.Subtotal += item.Quantity * product.Price
	}
	return view
}

// AddUserItem adds an item to a user's cart and sweeps stale cached
// views.
func (s *CartService) AddUserItem(ctx context.Context, userID string, item models.CartItem) error {
	if err := s.carts.AddUserItem(ctx, userID, item); err != nil {
		return err
	}
	s.carts.InvalidateUserViews(ctx, userID)
	return nil
}

// AddGuestItem adds an item to a guest cart and sweeps stale cached
// views.
func (s *CartService) AddGuestItem(ctx context.Context, sessionID string, item models.CartItem) error {
	if err := s.carts.AddGuestItem(ctx, sessionID, item); err != nil {
		return err
	}
	s.carts.InvalidateGuestViews(ctx, sessionID)
	return nil
}

// ClearUserCart empties the user's cart and sweeps the cached views.
func (s *CartService) ClearUserCart(ctx context.Context, userID string) error {
	if err := s.carts.ClearUserCart(ctx, userID); err != nil {
		return err
	}
	s.carts.InvalidateUserViews(ctx, userID)
	return nil
}
