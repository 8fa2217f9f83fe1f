package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const tagKeyPrefix = "tag:"

// setScript stores the entry and indexes it under each tag in a single
// atomic step, so a write racing with a tag sweep lands entirely before
// or entirely after it. Each tag's own expiry is extended to at least
// the entry TTL plus slack, so the index always outlives the entries it
// must be able to invalidate.
var setScript = redis.NewScript(`
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
for i = 2, #KEYS do
  redis.call("SADD", KEYS[i], KEYS[1])
  local ttl = redis.call("PTTL", KEYS[i])
  if ttl < tonumber(ARGV[3]) then
    redis.call("PEXPIRE", KEYS[i], ARGV[3])
  end
end
return 1
`)

// invalidateScript deletes every key under a tag and the tag set itself
// as one atomic sweep, returning how many entries were removed.
var invalidateScript = redis.NewScript(`
local keys = redis.call("SMEMBERS", KEYS[1])
for i = 1, #keys do
  redis.call("DEL", keys[i])
end
redis.call("DEL", KEYS[1])
return #keys
`)

// Cache is a tag-indexed ephemeral store over Redis. Every operation
// degrades gracefully: if Redis is unreachable, reads report a miss and
// writes report success, so callers treating the cache as an
// optimization keep working. The one caller that treats it as a source
// of truth (the checkout session store) checks Set errors itself.
type Cache struct {
	client   *redis.Client
	tagSlack time.Duration
}

func New(client *redis.Client, tagSlack time.Duration) *Cache {
	if tagSlack <= 0 {
		tagSlack = time.Minute
	}
	return &Cache{client: client, tagSlack: tagSlack}
}

// Enabled reports whether a Redis client is configured at all.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get unmarshals the entry under key into dest and reports whether it
// was found. Storage and decode errors are logged and reported as a
// miss; Get never fails the caller.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}

	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		zap.L().Warn("cache get failed, treating as miss", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		zap.L().Warn("cache entry unmarshal failed, treating as miss", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set serializes value under key with the given TTL and indexes it
// under each tag. The returned error is informational for read-through
// callers and fatal only for the session store.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		zap.L().Warn("cache set marshal failed", zap.String("key", key), zap.Error(err))
		return err
	}

	keys := make([]string, 0, len(tags)+1)
	keys = append(keys, key)
	for _, tag := range tags {
		keys = append(keys, tagKeyPrefix+tag)
	}

	tagTTL := ttl + c.tagSlack
	if err := setScript.Run(ctx, c.client, keys,
		data, ttl.Milliseconds(), tagTTL.Milliseconds()).Err(); err != nil {
		zap.L().Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Del unconditionally removes key. The entry may remain referenced by a
// tag set until the tag expires or is swept; a dangling reference only
// costs a no-op DEL at invalidation time.
func (c *Cache) Del(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		zap.L().Warn("cache del failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// InvalidateByTag removes every entry indexed under tag together with
// the tag set and returns the number of entries removed. Storage errors
// are logged and reported as zero removals.
func (c *Cache) InvalidateByTag(ctx context.Context, tag string) int {
	if !c.Enabled() {
		return 0
	}

	n, err := invalidateScript.Run(ctx, c.client, []string{tagKeyPrefix + tag}).Int()
	if err != nil {
		zap.L().Warn("cache tag invalidation failed", zap.String("tag", tag), zap.Error(err))
		return 0
	}
	if n > 0 {
		zap.L().Info("cache tag invalidated", zap.String("tag", tag), zap.Int("removed", n))
	}
	return n
}
