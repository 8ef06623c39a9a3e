package middleware

import (
	"net/http"
	"sync"

	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  *sync.RWMutex
	r   rate.Limit // requests per second
	b   int        // burst
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		mu:  &sync.RWMutex{},
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) GetLimiter(key string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[key]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[key] = limiter
	}

	return limiter
}

// RateLimitByIP guards the public employee endpoints, where there is no
// authenticated identity to key on.
func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewIPRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			response.Abort(c, http.StatusTooManyRequests, apperror.CodeRateLimited, "Too many requests from this IP", nil)
			return
		}
		c.Next()
	}
}

// RateLimitByUser: r = requests per second, b = burst.
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewIPRateLimiter(r, b)
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}
		if !limiter.GetLimiter(userID).Allow() {
			response.Abort(c, http.StatusTooManyRequests, apperror.CodeRateLimited, "Too many requests from this user", nil)
			return
		}
		c.Next()
	}
}
