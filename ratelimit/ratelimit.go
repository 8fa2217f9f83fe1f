package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// allowScript prunes timestamps that slid out of the window, counts
// what remains and conditionally appends the current request, all in
// one atomic step per identifier. Two concurrent requests can never
// both observe the last remaining slot. The sorted set expires after a
// full idle window to bound memory for inactive identifiers.
var allowScript = redis.NewScript(`
local cutoff = tonumber(ARGV[1]) - tonumber(ARGV[2])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", cutoff)
local count = redis.call("ZCARD", KEYS[1])
local allowed = 0
if count < tonumber(ARGV[3]) then
  redis.call("ZADD", KEYS[1], ARGV[1], ARGV[4])
  allowed = 1
  count = count + 1
end
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return {allowed, count}
`)

// Result reports the admission decision for a single request.
type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
	Total     int
}

// Limiter is a sliding-window rate limiter over a Redis sorted set per
// identifier. Named profiles (api, auth, search, ...) are independent
// Limiter instances with distinct key prefixes and budgets.
type Limiter struct {
	client *redis.Client
	name   string
	window time.Duration
	max    int
}

func NewLimiter(client *redis.Client, name string, window time.Duration, max int) *Limiter {
	return &Limiter{client: client, name: name, window: window, max: max}
}

// Name returns the profile name this limiter was configured with.
func (l *Limiter) Name() string { return l.name }

// Max returns the request budget per window.
func (l *Limiter) Max() int { return l.max }

func (l *Limiter) key(identifier string) string {
	return fmt.Sprintf("ratelimit:%s:%s", l.name, identifier)
}

// Allow records the current request for identifier if it fits in the
// window and reports the decision. If Redis is unreachable the limiter
// fails open: storefront availability outweighs strict abuse
// prevention, and the degraded mode is logged rather than swallowed.
func (l *Limiter) Allow(ctx context.Context, identifier string) Result {
	now := time.Now()
	reset := now.Add(l.window)

	if l.client == nil {
		return Result{Allowed: true, Remaining: l.max - 1, ResetTime: reset}
	}

	member := fmt.Sprintf("%d", now.UnixNano())
	vals, err := allowScript.Run(ctx, l.client, []string{l.key(identifier)},
		now.UnixMilli(), l.window.Milliseconds(), l.max, member).Int64Slice()
	if err != nil || len(vals) != 2 {
		zap.L().Warn("rate limiter store unreachable, failing open",
			zap.String("profile", l.name),
			zap.String("identifier", identifier),
			zap.Error(err))
		return Result{Allowed: true, Remaining: l.max - 1, ResetTime: reset}
	}

	allowed := vals[0] == 1
	total := int(vals[1])
	remaining := 0
	if allowed {
		remaining = l.max - total
	}

	return Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetTime: reset,
		Total:     total,
	}
}

// Profiles builds the named limiters from configuration. Each profile
// keeps its own counters; they never share state.
func Profiles(client *redis.Client, cfg map[string]Profile) map[string]*Limiter {
	limiters := make(map[string]*Limiter, len(cfg))
	for name, p := range cfg {
		limiters[name] = NewLimiter(client, name, p.Window, p.MaxRequests)
	}
	return limiters
}

// Profile mirrors the per-profile configuration shape.
type Profile struct {
	Window      time.Duration
	MaxRequests int
}
