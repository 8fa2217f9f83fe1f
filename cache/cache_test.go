package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, time.Minute), mr
}

func TestSetAndGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k1", payload{Name: "a", Count: 2}, time.Minute))

	var got payload
	assert.True(t, c.Get(ctx, "k1", &got))
	assert.Equal(t, payload{Name: "a", Count: 2}, got)
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got payload
	assert.False(t, c.Get(context.Background(), "absent", &got))
}

func TestDelRemovesEntry(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k1", payload{Name: "a"}, time.Minute))
	assert.NoError(t, c.Del(ctx, "k1"))

	var got payload
	assert.False(t, c.Get(ctx, "k1", &got))
}

func TestEntryExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k1", payload{Name: "a"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var got payload
	assert.False(t, c.Get(ctx, "k1", &got))
}

func TestInvalidateByTagSweepsOnlyTaggedKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k1", payload{Name: "a"}, time.Minute, "t1"))
	assert.NoError(t, c.Set(ctx, "k2", payload{Name: "b"}, time.Minute, "t1"))
	assert.NoError(t, c.Set(ctx, "k3", payload{Name: "c"}, time.Minute, "t2"))

	assert.Equal(t, 2, c.InvalidateByTag(ctx, "t1"))

	var got payload
	assert.False(t, c.Get(ctx, "k1", &got))
	assert.False(t, c.Get(ctx, "k2", &got))
	assert.True(t, c.Get(ctx, "k3", &got), "keys under other tags must survive")

	// The tag set itself is gone: a second sweep removes nothing.
	assert.Equal(t, 0, c.InvalidateByTag(ctx, "t1"))
}

func TestKeyCanCarryMultipleTags(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k1", payload{Name: "a"}, time.Minute, "t1", "t2"))
	assert.Equal(t, 1, c.InvalidateByTag(ctx, "t1"))

	var got payload
	assert.False(t, c.Get(ctx, "k1", &got))
}

func TestTagOutlivesItsEntries(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "short", payload{Name: "a"}, time.Minute, "t1"))
	assert.NoError(t, c.Set(ctx, "long", payload{Name: "b"}, 10*time.Minute, "t1"))

	tagTTL := mr.TTL("tag:t1")
	assert.GreaterOrEqual(t, tagTTL, 10*time.Minute, "tag expiry must cover the longest-lived member")

	// A shorter write afterwards must not shrink the tag's expiry.
	assert.NoError(t, c.Set(ctx, "short2", payload{Name: "c"}, time.Minute, "t1"))
	assert.GreaterOrEqual(t, mr.TTL("tag:t1"), 10*time.Minute)
}

func TestDisabledCacheDegradesGracefully(t *testing.T) {
	c := New(nil, time.Minute)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.NoError(t, c.Set(ctx, "k1", payload{Name: "a"}, time.Minute, "t1"))
	assert.NoError(t, c.Del(ctx, "k1"))
	assert.Equal(t, 0, c.InvalidateByTag(ctx, "t1"))

	var got payload
	assert.False(t, c.Get(ctx, "k1", &got))
}

func TestUnreachableStoreReportsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k1", payload{Name: "a"}, time.Minute))
	mr.Close()

	var got payload
	assert.False(t, c.Get(ctx, "k1", &got), "store errors must read as a miss, never fail the caller")
	assert.Error(t, c.Set(ctx, "k2", payload{Name: "b"}, time.Minute))
	assert.Equal(t, 0, c.InvalidateByTag(ctx, "t1"))
}
