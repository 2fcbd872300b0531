package library

import (
	"time"

	"golang.org/x/time/rate"
)

func (wl *WriteLimiter) SetClock(now func() time.Time) {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	wl.now = now
	wl.lastSweep = now()
}

func (wl *WriteLimiter) LimiterFor(userId string) *rate.Limiter {
	return wl.limiterFor(userId)
}

func (wl *WriteLimiter) Tracked() int {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	return len(wl.limiters)
}
