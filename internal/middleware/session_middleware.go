package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vostra/vostra-backend/pkg/redis"
)

// SessionTouchMiddleware slides the Redis TTL of the request's session token
// forward, so active guest carts are never reaped as idle. Best effort: a
// missing token or an unreachable Redis never blocks the request.
func SessionTouchMiddleware(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := GetSessionToken(c); token != "" {
			if err := redis.TouchSession(c.Request.Context(), token, ttl); err != nil {
				GetLoggerFromContext(c).Debug("Failed to touch session TTL", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
		c.Next()
	}
}
