package middleware

import (
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/ratelimit"
	"github.com/gin-gonic/gin"
)

// NewHTTPRateLimitPerIP limits requests per client IP.
func NewHTTPRateLimitPerIP(limit, burst, cacheSize int, ttl time.Duration) gin.HandlerFunc {
	visitors := ratelimit.NewPerKey(limit, burst, cacheSize, ttl)

	return func(c *gin.Context) {
		if !visitors.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "failure",
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
