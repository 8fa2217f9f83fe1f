package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkout-service/cache"
	"checkout-service/models"
)

// SessionTag groups all live checkout sessions for bulk invalidation.
const SessionTag = "checkout:sessions"

var (
	// ErrSessionNotFound covers an absent, expired, or already-consumed
	// session; callers cannot distinguish the three.
	ErrSessionNotFound = errors.New("checkout session not found")

	// ErrSessionStoreUnavailable means the session could not be
	// persisted. Unlike every other cache use, this one is fatal: with
	// no session there is no way to later materialize the order.
	ErrSessionStoreUnavailable = errors.New("checkout session store unavailable")
)

// SessionStore holds checkout sessions between payment initiation and
// verification.
type SessionStore interface {
	Save(ctx context.Context, session *models.CheckoutSession) error
	Find(ctx context.Context, orderID string) (*models.CheckoutSession, error)
	Delete(ctx context.Context, orderID string) error
}

// RedisSessionRepository implements SessionStore over the tag-indexed
// cache. The cache here is the source of truth, not an optimization, so
// write failures are surfaced rather than absorbed.
type RedisSessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewRedisSessionRepository(c *cache.Cache, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{cache: c, ttl: ttl}
}

func sessionKey(orderID string) string {
	return "checkout:session:" + orderID
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *models.CheckoutSession) error {
	if !r.cache.Enabled() {
		return ErrSessionStoreUnavailable
	}
	if err := r.cache.Set(ctx, sessionKey(session.OrderID), session, r.ttl, SessionTag); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}
	return nil
}

func (r *RedisSessionRepository) Find(ctx context.Context, orderID string) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	if !r.cache.Get(ctx, sessionKey(orderID), &session) {
		return nil, ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, orderID string) error {
	return r.cache.Del(ctx, sessionKey(orderID))
}

// TTL returns the configured session lifetime.
func (r *RedisSessionRepository) TTL() time.Duration {
	return r.ttl
}
