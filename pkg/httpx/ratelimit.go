package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/lingua/pkg/slogx"
	"golang.org/x/time/rate"
)

// Limit is a token bucket: Requests per Window, with up to Burst at once.
type Limit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

func (l Limit) every() rate.Limit {
	if l.Requests <= 0 || l.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(l.Requests) / l.Window.Seconds())
}

// Default profiles. LimitFromEnv overrides them per deployment.
var (
	// AuthLimit guards credential endpoints against guessing.
	AuthLimit = Limit{Requests: 10, Window: time.Minute, Burst: 5}

	// WriteLimit covers authenticated mutations.
	WriteLimit = Limit{Requests: 60, Window: time.Minute, Burst: 20}

	// ReadLimit covers reads and page navigation.
	ReadLimit = Limit{Requests: 600, Window: time.Minute, Burst: 100}
)

// LimitFromEnv reads RATELIMIT_<NAME>_REQUESTS, RATELIMIT_<NAME>_WINDOW
// (a Go duration) and RATELIMIT_<NAME>_BURST over def. Invalid or
// non-positive values are ignored.
func LimitFromEnv(name string, def Limit) Limit {
	prefix := "RATELIMIT_" + strings.ToUpper(name) + "_"
	l := def
	if n, err := strconv.Atoi(os.Getenv(prefix + "REQUESTS")); err == nil && n > 0 {
		l.Requests = n
	}
	if d, err := time.ParseDuration(os.Getenv(prefix + "WINDOW")); err == nil && d > 0 {
		l.Window = d
	}
	if n, err := strconv.Atoi(os.Getenv(prefix + "BURST")); err == nil && n > 0 {
		l.Burst = n
	}
	return l
}

// KeyFunc groups requests into buckets. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then
// the remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserOrIP keys by authenticated user, falling back to client IP.
func UserOrIP(r *http.Request) string {
	if id := UserID(r.Context()); id != "" {
		return "user:" + id
	}
	return "ip:" + ClientIP(r)
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// buckets holds one limiter per key and evicts idle ones.
type buckets struct {
	limit Limit
	idle  time.Duration

	mu        sync.Mutex
	m         map[string]*bucket
	lastSweep time.Time
}

func newBuckets(l Limit) *buckets {
	idle := 2 * l.Window
	if idle < time.Minute {
		idle = time.Minute
	}
	return &buckets{limit: l, idle: idle, m: make(map[string]*bucket), lastSweep: time.Now()}
}

func (b *buckets) get(key string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) > b.idle {
		for k, v := range b.m {
			if now.Sub(v.lastSeen) > b.idle {
				delete(b.m, k)
			}
		}
		b.lastSweep = now
	}

	bk, ok := b.m[key]
	if !ok {
		bk = &bucket{lim: rate.NewLimiter(b.limit.every(), max(b.limit.Burst, 1))}
		b.m[key] = bk
	}
	bk.lastSeen = now
	return bk.lim
}

// RateLimit rejects requests over l with 429 and a Retry-After header.
func RateLimit(l Limit, key KeyFunc) Middleware {
	b := newBuckets(l)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			lim := b.get(k, now)
			if lim.AllowN(now, 1) {
				next.ServeHTTP(w, r)
				return
			}

			res := lim.ReserveN(now, 1)
			retry := max(int(res.DelayFrom(now).Seconds()), 1)
			res.CancelAt(now)

			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Requests))
			w.Header().Set("X-RateLimit-Window", l.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k, "path", r.URL.Path, "retry_after", retry)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limited",
				"error_description": "too many requests, retry later",
			})
		})
	}
}

// RateLimitByIP limits by client IP.
func RateLimitByIP(l Limit) Middleware { return RateLimit(l, ClientIP) }

// RateLimitByUser limits by user, or by IP for anonymous callers.
func RateLimitByUser(l Limit) Middleware { return RateLimit(l, UserOrIP) }
