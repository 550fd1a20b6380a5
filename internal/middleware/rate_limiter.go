package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
)

type RateLimiterConfig struct {
	// RPS is requests per second across all callers. Zero disables limiting.
	RPS   float64
	Burst int
}

type RateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.RPS <= 0 {
		return &RateLimiter{}
	}
	burst := config.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(config.RPS), burst)}
}

// RateLimit answers with a 429 envelope once the bucket is empty.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiter != nil && !rl.limiter.Allow() {
			err := errors.FromEnvelope(429, "rate limit exceeded")
			c.AbortWithStatusJSON(429, httputil.Failure[interface{}](err))
			return
		}
		c.Next()
	}
}
