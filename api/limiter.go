package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// SessionLimiter throttles submissions per session.
type SessionLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewSessionLimiter(perSecond float64, burst int) *SessionLimiter {
	return &SessionLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *SessionLimiter) Allow(sessionID string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	limiter, ok := l.limiters[sessionID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[sessionID] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// Forget drops the limiter of an ended session.
func (l *SessionLimiter) Forget(sessionIDs ...string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range sessionIDs {
		delete(l.limiters, id)
	}
}

func (l *SessionLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
