package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	limiterSweepEvery = 10 * time.Minute
	limiterIdleTTL    = 30 * time.Minute
)

const tooManyRequestsBody = `{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet hands out one token bucket per key and forgets keys that have
// been idle for longer than ttl.
type limiterSet[K comparable] struct {
	mu      sync.Mutex
	buckets map[K]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

func newLimiterSet[K comparable](requestsPerSecond float64, burst int) *limiterSet[K] {
	return &limiterSet[K]{
		buckets: make(map[K]*bucket),
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
		ttl:     limiterIdleTTL,
		now:     time.Now,
	}
}

func (s *limiterSet[K]) allow(key K) bool {
	s.mu.Lock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = s.now()
	s.mu.Unlock()

	return b.limiter.Allow()
}

// sweep drops idle buckets and reports how many remain.
func (s *limiterSet[K]) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	for key, b := range s.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(s.buckets, key)
		}
	}
	return len(s.buckets)
}

// sweepUntil runs sweep on a ticker until ctx ends.
func (s *limiterSet[K]) sweepUntil(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-ctx.Done():
			return
		}
	}
}

// limitBy rejects requests whose key has exhausted its bucket. Requests for
// which key reports false are not limited.
func limitBy[K comparable](set *limiterSet[K], key func(*http.Request) (K, bool)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k, ok := key(r)
			if ok && !set.allow(k) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, tooManyRequestsBody, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits the unauthenticated auth routes per client address.
// It keys on r.RemoteAddr, so mount it after chi's RealIP.
func RateLimitByIP(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	set := newLimiterSet[string](requestsPerSecond, burst)
	go set.sweepUntil(ctx, limiterSweepEvery)

	return limitBy(set, func(r *http.Request) (string, bool) {
		return r.RemoteAddr, true
	})
}

// RateLimit gives each authenticated manager a token bucket of
// requestsPerSecond with the given burst. Requests without a manager in the
// context pass through untouched; Auth must run first for the limit to apply.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	set := newLimiterSet[uuid.UUID](requestsPerSecond, burst)
	go set.sweepUntil(ctx, limiterSweepEvery)

	return limitBy(set, func(r *http.Request) (uuid.UUID, bool) {
		return ManagerIDFromContext(r.Context())
	})
}
