package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity headers are set by the upstream gateway after
// authentication; this service never handles credentials itself.
const (
	UserIDHeader       = "X-User-ID"
	GuestSessionHeader = "X-Guest-Session"

	userIDKey       = "user_id"
	guestSessionKey = "guest_session"
)

// Identity extracts the caller's identity headers into the request
// context. Either a user ID or a guest session is acceptable.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(userIDKey, c.GetHeader(UserIDHeader))
		c.Set(guestSessionKey, c.GetHeader(GuestSessionHeader))
		c.Next()
	}
}

// RequireIdentity rejects requests carrying neither a user ID nor a
// guest session.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(UserIDHeader) == "" && c.GetHeader(GuestSessionHeader) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user ID, if any.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetGuestSession returns the guest session ID, if any.
func GetGuestSession(c *gin.Context) string {
	return c.GetString(guestSessionKey)
}
