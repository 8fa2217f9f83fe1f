package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"checkout-service/ratelimit"
)

// RateLimit applies a named sliding-window limiter keyed by client IP.
// When the limiter's backing store is down it fails open, so this
// middleware never takes the storefront down with it.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := limiter.Allow(c.Request.Context(), c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Max()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetTime.Unix(), 10))

		if !res.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
