package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const defaultLimiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimiter keeps one token bucket per caller. Authenticated callers are keyed
// by user id, everyone else by client IP. Buckets idle for longer than the TTL
// are dropped on the next sweep.
type RateLimiter struct {
	limiters  sync.Map // map[string]*limiterEntry
	rps       float64
	burst     int
	idleTTL   time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 5
	}
	l := &RateLimiter{rps: rps, burst: burst, idleTTL: defaultLimiterIdleTTL, now: time.Now}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

// Handler is a no-op when rps is not positive.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rps <= 0 {
			c.Next()
			return
		}
		if !l.limiter(callerKey(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	now := l.now().UnixNano()
	l.maybeSweep(now)

	if v, ok := l.limiters.Load(key); ok {
		entry := v.(*limiterEntry)
		entry.lastSeen.Store(now)
		return entry.lim
	}
	entry := &limiterEntry{lim: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
	entry.lastSeen.Store(now)
	actual, loaded := l.limiters.LoadOrStore(key, entry)
	if loaded {
		entry = actual.(*limiterEntry)
		entry.lastSeen.Store(now)
	}
	return entry.lim
}

// maybeSweep runs at most once per TTL; only the caller that wins the swap sweeps.
func (l *RateLimiter) maybeSweep(now int64) {
	last := l.lastSweep.Load()
	ttl := l.idleTTL.Nanoseconds()
	if now-last < ttl || !l.lastSweep.CompareAndSwap(last, now) {
		return
	}
	l.limiters.Range(func(key, value any) bool {
		if now-value.(*limiterEntry).lastSeen.Load() >= ttl {
			l.limiters.Delete(key)
		}
		return true
	})
}

func callerKey(c *gin.Context) string {
	if principal, ok := MustPrincipal(c); ok {
		return "user:" + principal.UserID.String()
	}
	return "ip:" + c.ClientIP()
}
