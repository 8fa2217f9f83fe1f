package repository

import (
	"context"
	"fmt"
	"time"

	"checkout-service/cache"
	"checkout-service/models"
)

// CartStore holds live carts for authenticated users and guests.
type CartStore interface {
	GetUserCart(ctx context.Context, userID string) (*models.Cart, error)
	AddUserItem(ctx context.Context, userID string, item models.CartItem) error
	ClearUserCart(ctx context.Context, userID string) error
	GetGuestCart(ctx context.Context, sessionID string) (*models.Cart, error)
	AddGuestItem(ctx context.Context, sessionID string, item models.CartItem) error
	ClearGuestCart(ctx context.Context, sessionID string) error
	InvalidateUserViews(ctx context.Context, userID string) int
	InvalidateGuestViews(ctx context.Context, sessionID string) int
}

// UserCartViewTag is the invalidation tag covering cached views derived
// from a user's cart (priced summaries and the like). The cart record
// itself is not tagged: it is the store, views are the cache.
func UserCartViewTag(userID string) string {
	return "cartview:user:" + userID
}

// GuestCartViewTag is the invalidation tag for a guest session's cached
// cart views.
func GuestCartViewTag(sessionID string) string {
	return "cartview:guest:" + sessionID
}

// RedisCartRepository implements CartStore over Redis via the cache
// layer's key/value primitives.
type RedisCartRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewRedisCartRepository(c *cache.Cache, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{cache: c, ttl: ttl}
}

func userCartKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func guestCartKey(sessionID string) string {
	return fmt.Sprintf("cart:guest:%s", sessionID)
}

func (r *RedisCartRepository) getCart(ctx context.Context, key, ownerID string) *models.Cart {
	var cart models.Cart
	if !r.cache.Get(ctx, key, &cart) {
		return &models.Cart{OwnerID: ownerID, Items: []models.CartItem{}}
	}
	return &cart
}

func (r *RedisCartRepository) addItem(ctx context.Context, key, ownerID string, item models.CartItem) error {
	if item.Quantity <= 0 {
		return fmt.Errorf("invalid quantity %d for product %s", item.Quantity, item.ProductID)
	}

	cart := r.getCart(ctx, key, ownerID)
	found := false
	for i, existing := range cart.Items {
		if existing.ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, item)
	}

	cart.UpdatedAt = time.Now()
	return r.cache.Set(ctx, key, cart, r.ttl)
}

func (r *RedisCartRepository) GetUserCart(ctx context.Context, userID string) (*models.Cart, error) {
	return r.getCart(ctx, userCartKey(userID), userID), nil
}

func (r *RedisCartRepository) AddUserItem(ctx context.Context, userID string, item models.CartItem) error {
	return r.addItem(ctx, userCartKey(userID), userID, item)
}

func (r *RedisCartRepository) ClearUserCart(ctx context.Context, userID string) error {
	return r.cache.Del(ctx, userCartKey(userID))
}

func (r *RedisCartRepository) GetGuestCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	return r.getCart(ctx, guestCartKey(sessionID), sessionID), nil
}

func (r *RedisCartRepository) AddGuestItem(ctx context.Context, sessionID string, item models.CartItem) error {
	return r.addItem(ctx, guestCartKey(sessionID), sessionID, item)
}

func (r *RedisCartRepository) ClearGuestCart(ctx context.Context, sessionID string) error {
	return r.cache.Del(ctx, guestCartKey(sessionID))
}

// InvalidateUserViews sweeps every cached view derived from the user's
// cart.
func (r *RedisCartRepository) InvalidateUserViews(ctx context.Context, userID string) int {
	return r.cache.InvalidateByTag(ctx, UserCartViewTag(userID))
}

// InvalidateGuestViews sweeps the guest session's cached cart views.
func (r *RedisCartRepository) InvalidateGuestViews(ctx context.Context, sessionID string) int {
	return r.cache.InvalidateByTag(ctx, GuestCartViewTag(sessionID))
}
