package library

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mattfehr/volleyball-rotation-tracker/auth"
	"golang.org/x/time/rate"
)

var ErrTooManyRequestsStr = "too-many-requests"

// LimiterIdleAfter is how long a user's bucket is kept without writes.
const LimiterIdleAfter = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// WriteLimiter hands every user a token bucket for library writes. Buckets
// idle for longer than idleAfter are dropped; by then they are full again.
type WriteLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	r         rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewWriteLimiter(r rate.Limit, burst int) *WriteLimiter {
	idleAfter := LimiterIdleAfter
	if r > 0 && r != rate.Inf {
		refill := time.Duration(float64(burst) / float64(r) * float64(time.Second))
		idleAfter = max(idleAfter, refill)
	}
	return &WriteLimiter{
		limiters:  make(map[string]*limiterEntry),
		r:         r,
		burst:     burst,
		idleAfter: idleAfter,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (wl *WriteLimiter) limiterFor(userId string) *rate.Limiter {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	now := wl.now()
	if now.Sub(wl.lastSweep) >= wl.idleAfter {
		wl.sweep(now)
	}

	entry, ok := wl.limiters[userId]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(wl.r, wl.burst)}
		wl.limiters[userId] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (wl *WriteLimiter) sweep(now time.Time) {
	for userId, entry := range wl.limiters {
		if now.Sub(entry.lastSeen) >= wl.idleAfter {
			delete(wl.limiters, userId)
		}
	}
	wl.lastSweep = now
}

func (wl *WriteLimiter) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !wl.limiterFor(ctx.GetString(auth.ContextKeyID)).Allow() {
			ctx.String(http.StatusTooManyRequests, ErrTooManyRequestsStr)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
