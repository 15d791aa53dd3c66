// Package ratelimit implements the per-client admission limiter guarding
// the webhook endpoint: a sliding window of request timestamps kept per
// client identity, with stale clients pruned once the tracked set grows
// past a cap.
package ratelimit

import (
	"sync"
	"time"

	"github.com/verustcode/verustcode/internal/reviewmodel"
)

// MaxTrackedClients caps the number of per-client windows kept in memory.
// Above this, clients with no activity inside the window are pruned.
const MaxTrackedClients = 1000

// Limiter is a sliding-window rate limiter, safe for concurrent use. One
// deque of in-window timestamps is tracked per client; a request is
// admitted while the deque holds fewer than perWindow entries.
type Limiter struct {
	mu        sync.Mutex
	clients   map[string][]time.Time
	perWindow int
	window    time.Duration
	now       func() time.Time
}

// New constructs a Limiter admitting perWindow requests per client per
// sliding window. Non-positive arguments fall back to the defaults
// (100 requests per 60 s).
func New(perWindow int, window time.Duration) *Limiter {
	if perWindow <= 0 {
		perWindow = reviewmodel.DefaultRateLimitPerMinute
	}
	if window <= 0 {
		window = reviewmodel.RateLimitWindowSeconds * time.Second
	}
	return &Limiter{
		clients:   make(map[string][]time.Time),
		perWindow: perWindow,
		window:    window,
		now:       time.Now,
	}
}

// Allow reports whether the request from clientID is admitted. When
// denied, retryAfter is the time until the oldest in-window timestamp
// slides out of the window, i.e. when a slot opens up again.
func (l *Limiter) Allow(clientID string) (ok bool, retryAfter time.Duration) {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	// Drop timestamps that have slid out of the window.
	stamps := l.clients[clientID]
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	stamps = stamps[i:]

	if len(stamps) >= l.perWindow {
		l.clients[clientID] = stamps
		retryAfter = stamps[0].Sub(cutoff)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter
	}

	stamps = append(stamps, now)
	l.clients[clientID] = stamps
	if len(l.clients) > MaxTrackedClients {
		l.pruneLocked(cutoff)
	}
	return true, 0
}

// pruneLocked evicts clients whose most recent request is outside the
// current window. Must be called with l.mu held.
func (l *Limiter) pruneLocked(cutoff time.Time) {
	for id, stamps := range l.clients {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(l.clients, id)
		}
	}
}

// TrackedClients reports how many distinct clients currently hold a window.
func (l *Limiter) TrackedClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
