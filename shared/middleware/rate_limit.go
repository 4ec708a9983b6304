package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter ограничивает частоту запросов по IP клиента (token bucket).
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	logger  *zap.Logger
	mu      sync.Mutex
	clients map[string]*clientLimiter
	now     func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter создает лимитер. perSecond <= 0 отключает ограничение.
func NewRateLimiter(perSecond float64, burst int, logger *zap.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		ttl:     10 * time.Minute,
		logger:  logger.Named("RateLimiter"),
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow проверяет и расходует токен для ключа.
func (r *RateLimiter) Allow(key string) bool {
	if r.limit <= 0 {
		return true
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	// чистим давно не активных клиентов
	for k, cl := range r.clients {
		if now.Sub(cl.lastSeen) > r.ttl {
			delete(r.clients, k)
		}
	}

	cl, ok := r.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// Middleware gin-обертка. При превышении отвечает 429 с {"error": ...}.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		r.logger.Warn("Rate limit exceeded",
			zap.String("clientIP", c.ClientIP()),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
	}
}
