package server

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit configures the per-client limiter on player and login routes.
// A zero PerSecond disables it.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterPruneSize = 1024
)

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipLimiter hands out one token bucket per client address.
type ipLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientLimiter
	now     func() time.Time
}

func newIPLimiter(cfg RateLimit) *ipLimiter {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		limit:   rate.Limit(cfg.PerSecond),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

func (l *ipLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.clients) >= limiterPruneSize {
		for k, c := range l.clients {
			if now.Sub(c.seen) > limiterIdleTTL {
				delete(l.clients, k)
			}
		}
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.seen = now
	return c.lim.AllowN(now, 1)
}

// clientKey strips the port that RemoteAddr carries when RealIP found no
// forwarding header.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func rateLimitMiddleware(cfg RateLimit, logger *slog.Logger) func(http.Handler) http.Handler {
	if cfg.PerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := newIPLimiter(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !l.allow(key) {
				logger.Warn("rate limited", "client", key, "path", r.URL.Path)
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
