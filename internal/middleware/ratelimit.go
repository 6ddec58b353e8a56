package middleware

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/utils"
)

var errRateLimited = apperror.TooManyRequests("RATE_LIMIT_EXCEEDED", "too many requests, please slow down")

// RateLimiterOptions configures the per-user limiter.
type RateLimiterOptions struct {
	Limit rate.Limit
	Burst int
	// ExpiryDuration is how long an idle caller keeps its limiter.
	ExpiryDuration time.Duration
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per authenticated user, falling back to the
// remote address for anonymous requests. A non-positive limit disables it.
type RateLimiter struct {
	mu      sync.Mutex
	options RateLimiterOptions
	clients map[string]*client
}

// NewRateLimiter creates a limiter.
func NewRateLimiter(options RateLimiterOptions) *RateLimiter {
	if options.Burst <= 0 {
		options.Burst = 1
	}
	if options.ExpiryDuration <= 0 {
		options.ExpiryDuration = time.Hour
	}
	return &RateLimiter{options: options, clients: make(map[string]*client)}
}

// Run evicts idle callers until ctx is done.
func (r *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.evict(now)
		}
	}
}

// Middleware answers 429 once a caller exceeds its budget.
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	if r.options.Limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key := limiterKey(req)
		if !r.getLimiter(key).Allow() {
			log.Printf("[ratelimit] limit exceeded key=%s path=%s", key, req.URL.Path)
			w.Header().Set("Retry-After", "1")
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(r.options.Burst))
			utils.RespondServiceError(w, "ratelimit", errRateLimited)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *RateLimiter) getLimiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, exists := r.clients[key]
	if !exists {
		limiter := rate.NewLimiter(r.options.Limit, r.options.Burst)
		r.clients[key] = &client{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (r *RateLimiter) evict(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.clients {
		if now.Sub(v.lastSeen) > r.options.ExpiryDuration {
			delete(r.clients, k)
		}
	}
}

func limiterKey(req *http.Request) string {
	if owner, ok := OwnerID(req.Context()); ok {
		return "user:" + owner
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	return "ip:" + host
}
