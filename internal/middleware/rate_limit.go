package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	APIMaxRequests     = 100 // par minute et par IP
	WebhookMaxRequests = 300 // Stripe peut relivrer en rafale
	RateLimitWindow    = 1 * time.Minute
)

// RateLimiter : compteur à fenêtre fixe (cache.Store en production)
type RateLimiter interface {
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit limite le nombre de requêtes par IP sur un groupe de routes.
// Redis indisponible : la requête passe.
func RateLimit(limiter RateLimiter, scope string, max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())
		count, err := limiter.IncrementRateLimit(c.Request.Context(), key, window)
		if err != nil {
			log.Printf("⚠️ Rate limit indisponible (%s): %v", scope, err)
			c.Next()
			return
		}

		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(max, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		c.Next()
	}
}
