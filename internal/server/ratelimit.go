package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter manages per-client request rate limiting.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	requestsPerHour   int

	clients map[string]*clientUsage
}

// clientUsage tracks recent request timestamps for one client.
type clientUsage struct {
	minuteCount int
	minuteStart time.Time
	hourCount   int
	hourStart   time.Time
}

// NewRateLimiter creates a rate limiter with the given per-client limits.
// A non-positive limit disables that window.
func NewRateLimiter(requestsPerMinute, requestsPerHour int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		clients:           make(map[string]*clientUsage),
	}
}

// Allow records a request for clientID and returns an error when a limit is
// exceeded.
func (rl *RateLimiter) Allow(clientID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	usage, ok := rl.clients[clientID]
	if !ok {
		usage = &clientUsage{minuteStart: now, hourStart: now}
		rl.clients[clientID] = usage
	}

	if now.Sub(usage.minuteStart) >= time.Minute {
		usage.minuteCount = 0
		usage.minuteStart = now
	}
	if now.Sub(usage.hourStart) >= time.Hour {
		usage.hourCount = 0
		usage.hourStart = now
	}

	if rl.requestsPerMinute > 0 && usage.minuteCount >= rl.requestsPerMinute {
		return fmt.Errorf("rate limit exceeded: %d requests per minute", rl.requestsPerMinute)
	}
	if rl.requestsPerHour > 0 && usage.hourCount >= rl.requestsPerHour {
		return fmt.Errorf("rate limit exceeded: %d requests per hour", rl.requestsPerHour)
	}

	usage.minuteCount++
	usage.hourCount++
	return nil
}
