package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pageza/recipefinder/backend/internal/apperr"
)

// IPRateLimiter keeps a token bucket per client IP.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	log      *zerolog.Logger
}

// NewIPRateLimiter creates a limiter allowing rps requests per second with
// the given burst.
func NewIPRateLimiter(rps float64, burst int, log *zerolog.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  rate.Limit(rps),
		burst: burst,
		log:   log,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	if limiter, ok := i.limiters.Load(ip); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := i.limiters.LoadOrStore(ip, rate.NewLimiter(i.rate, i.burst))
	return limiter.(*rate.Limiter)
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
func (i *IPRateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := i.getLimiter(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(i.burst))
		if !limiter.Allow() {
			retry := time.Duration(float64(time.Second) / float64(i.rate))
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			RespondError(c, i.log, apperr.New(apperr.KindRateLimited, apperr.MsgRateLimited))
			return
		}

		c.Next()
	}
}
