package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Meta redelivers webhook events in bursts after an outage, so stale sources
// have to be swept rather than kept forever.
const (
	sourceIdleTTL = 10 * time.Minute
	sweepEvery    = 5 * time.Minute
)

// sourceBucket tracks the token balance for one delivery source.
type sourceBucket struct {
	tokens float64
	seen   time.Time
}

type ipLimiter struct {
	mu        sync.Mutex
	sources   map[string]*sourceBucket
	perSecond float64
	burst     float64
}

func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	l := &ipLimiter{
		sources:   make(map[string]*sourceBucket),
		perSecond: perSecond,
		burst:     float64(burst),
	}
	go l.sweep()
	return l
}

// take spends one token for the source, refilling for the time elapsed since
// the last delivery. A fresh source starts with a full burst allowance.
func (l *ipLimiter) take(source string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.sources[source]
	if !ok {
		l.sources[source] = &sourceBucket{tokens: l.burst - 1, seen: now}
		return true
	}

	b.tokens += now.Sub(b.seen).Seconds() * l.perSecond
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *ipLimiter) sweep() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()
	for now := range ticker.C {
		l.mu.Lock()
		for source, b := range l.sources {
			if now.Sub(b.seen) > sourceIdleTTL {
				delete(l.sources, source)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit sheds webhook floods per source IP, answering 429 with a
// Retry-After hint so well-behaved callers back off. perSecond is the steady
// rate, burst the extra allowance for redelivery spikes.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := newIPLimiter(perSecond, burst)
	retryAfter := strconv.Itoa(int(1/perSecond) + 1)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.take(sourceIP(r), time.Now()) {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sourceIP prefers the address resolved by chi's RealIP middleware and falls
// back to the connection peer, without the ephemeral port.
func sourceIP(r *http.Request) string {
	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
