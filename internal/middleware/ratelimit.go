// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// visitor tracks request timestamps for a single client IP.
type visitor struct {
	mu   sync.Mutex
	seen []time.Time
}

// RateLimiter limits requests per client IP over a sliding window. It
// guards the login and registration endpoints against brute force.
type RateLimiter struct {
	mu       sync.RWMutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewRateLimiter creates a limiter allowing limit requests per window
// and starts a background goroutine that evicts idle clients.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.evictIdle()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background eviction goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// allow reports whether key may make another request right now.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.RLock()
	v, ok := rl.visitors[key]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		v, ok = rl.visitors[key]
		if !ok {
			v = &visitor{}
			rl.visitors[key] = v
		}
		rl.mu.Unlock()
	}

	now := rl.now()
	cutoff := now.Add(-rl.window)

	v.mu.Lock()
	defer v.mu.Unlock()

	recent := v.seen[:0]
	for _, ts := range v.seen {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	v.seen = recent

	if len(v.seen) >= rl.limit {
		return false
	}
	v.seen = append(v.seen, now)
	return true
}

// evictIdle drops clients with no requests inside the current window.
func (rl *RateLimiter) evictIdle() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		v.mu.Lock()
		active := false
		for _, ts := range v.seen {
			if ts.After(cutoff) {
				active = true
				break
			}
		}
		v.mu.Unlock()

		if !active {
			delete(rl.visitors, key)
		}
	}
}

// Middleware returns an HTTP middleware that rejects requests over the
// limit with 429 Too Many Requests.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, honouring X-Forwarded-For and
// X-Real-IP for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
