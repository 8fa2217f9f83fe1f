package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"checkout-service/cache"
	"checkout-service/models"
)

func newSessionRepo(t *testing.T, ttl time.Duration) (*RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisSessionRepository(cache.New(client, time.Minute), ttl), mr
}

func testSession(ttl time.Duration) *models.CheckoutSession {
	now := time.Now()
	return &models.CheckoutSession{
		OrderID:    uuid.New().String(),
		GuestEmail: "guest@example.com",
		LineItems:  []models.LineItem{{ProductID: uuid.New().String(), Quantity: 2, UnitPrice: 1500}},
		Amount:     3000,
		Method:     "stripe",
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

func TestSessionSaveFindRoundTrip(t *testing.T) {
	repo, _ := newSessionRepo(t, 30*time.Minute)
	ctx := context.Background()

	session := testSession(30 * time.Minute)
	assert.NoError(t, repo.Save(ctx, session))

	found, err := repo.Find(ctx, session.OrderID)
	assert.NoError(t, err)
	assert.Equal(t, session.OrderID, found.OrderID)
	assert.Equal(t, session.LineItems, found.LineItems)
	assert.Equal(t, session.Amount, found.Amount)
}

func TestSessionFindAfterDelete(t *testing.T) {
	repo, _ := newSessionRepo(t, 30*time.Minute)
	ctx := context.Background()

	session := testSession(30 * time.Minute)
	assert.NoError(t, repo.Save(ctx, session))
	assert.NoError(t, repo.Delete(ctx, session.OrderID))

	_, err := repo.Find(ctx, session.OrderID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionReapedByTTL(t *testing.T) {
	repo, mr := newSessionRepo(t, 30*time.Minute)
	ctx := context.Background()

	session := testSession(30 * time.Minute)
	assert.NoError(t, repo.Save(ctx, session))

	mr.FastForward(31 * time.Minute)

	_, err := repo.Find(ctx, session.OrderID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionSaveFatalWithoutStore(t *testing.T) {
	repo := NewRedisSessionRepository(cache.New(nil, time.Minute), 30*time.Minute)

	err := repo.Save(context.Background(), testSession(30*time.Minute))
	assert.ErrorIs(t, err, ErrSessionStoreUnavailable)
}

func TestSessionSaveFatalWhenStoreDown(t *testing.T) {
	repo, mr := newSessionRepo(t, 30*time.Minute)
	mr.Close()

	err := repo.Save(context.Background(), testSession(30*time.Minute))
	assert.ErrorIs(t, err, ErrSessionStoreUnavailable)
}
