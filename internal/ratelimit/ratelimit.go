// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds rate limiting configuration
type Config struct {
	WindowSize    time.Duration // Time window for rate limiting
	MaxAttempts   int           // Maximum attempts per window
	CleanupPeriod time.Duration // How often to clean up old entries
}

// DefaultPromptConfig limits the answer pipeline, which fans out to the
// embedding and completion models and is by far the most expensive route.
func DefaultPromptConfig() *Config {
	return &Config{
		WindowSize:    time.Minute,
		MaxAttempts:   10,
		CleanupPeriod: 5 * time.Minute,
	}
}

// attemptRecord tracks attempts for one identifier
type attemptRecord struct {
	Count     int
	FirstSeen time.Time
}

// MemoryRateLimiter implements in-memory fixed-window rate limiting
type MemoryRateLimiter struct {
	config   *Config
	attempts map[string]*attemptRecord
	mu       sync.Mutex
	stopCh   chan struct{}
}

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		config:   config,
		attempts: make(map[string]*attemptRecord),
		stopCh:   make(chan struct{}),
	}

	go limiter.cleanupLoop()

	return limiter
}

// Allow checks if a request should be allowed
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	record, exists := rl.attempts[identifier]

	// New identifier or expired window: start fresh
	if !exists || now.Sub(record.FirstSeen) > rl.config.WindowSize {
		rl.attempts[identifier] = &attemptRecord{Count: 1, FirstSeen: now}
		return true, &RateLimitInfo{
			Allowed:   true,
			Limit:     rl.config.MaxAttempts,
			Remaining: rl.config.MaxAttempts - 1,
			ResetTime: now.Add(rl.config.WindowSize),
		}
	}

	record.Count++

	resetTime := record.FirstSeen.Add(rl.config.WindowSize)
	if record.Count > rl.config.MaxAttempts {
		return false, &RateLimitInfo{
			Allowed:    false,
			Limit:      rl.config.MaxAttempts,
			Remaining:  0,
			ResetTime:  resetTime,
			RetryAfter: time.Until(resetTime),
		}
	}

	return true, &RateLimitInfo{
		Allowed:   true,
		Limit:     rl.config.MaxAttempts,
		Remaining: rl.config.MaxAttempts - record.Count,
		ResetTime: resetTime,
	}
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	Limit      int // the configured window budget
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// cleanupLoop periodically removes expired records
func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for identifier, record := range rl.attempts {
		if now.Sub(record.FirstSeen) > rl.config.WindowSize {
			delete(rl.attempts, identifier)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() {
	close(rl.stopCh)
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	// Behind a proxy the remote address is the proxy, not the caller
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		if ip := parseFirstIP(forwarded); ip != "" {
			return ip
		}
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// parseFirstIP extracts the first IP from a comma-separated list
func parseFirstIP(forwarded string) string {
	ips := strings.Split(forwarded, ",")
	if len(ips) > 0 {
		return strings.TrimSpace(ips[0])
	}
	return ""
}
