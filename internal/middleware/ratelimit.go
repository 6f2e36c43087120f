package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apierrors "wastelookup/internal/errors"
	"wastelookup/internal/infrastructure"
)

// idleClientTTL is how long an unused client bucket is kept.
const idleClientTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP, so a single client
// cycling through chip numbers cannot starve everyone else.
type RateLimiter struct {
	rps    rate.Limit
	burst  int
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		logger:  logger,
		now:     time.Now,
		clients: make(map[string]*clientBucket),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > idleClientTTL {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > idleClientTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &clientBucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Clients reports how many client buckets are held.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Handler rejects requests over the client's budget with a 429 problem.
// Mount after RealIP.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r)
		lim := rl.limiter(client)
		if lim.Allow() {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		rl.logger.WarnContext(ctx, "rate limit exceeded",
			"method", r.Method,
			"path", r.URL.Path,
			"client", client,
		)

		retry := time.Second
		if rl.rps > 0 {
			retry = time.Duration(float64(time.Second) / float64(rl.rps))
		}
		w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retry.Round(time.Second)/time.Second))))
		apierrors.WriteProblem(w, apierrors.NewProblemDetails(
			http.StatusTooManyRequests,
			apierrors.TypeRateLimit,
			"Too Many Requests",
			"Rate limit exceeded. Please retry shortly",
			r.URL.Path,
		).WithExtension("trace_id", infrastructure.GetTraceID(ctx)).
			WithExtension("error_code", apierrors.CodeRateLimit))
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
