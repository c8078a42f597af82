// File: internal/ratelimit/ratelimit_test.go
package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinLimit(t *testing.T) {
	limiter := NewMemoryRateLimiter(&Config{
		WindowSize:    time.Minute,
		MaxAttempts:   3,
		CleanupPeriod: time.Minute,
	})
	defer limiter.Close()

	for i := 0; i < 3; i++ {
		allowed, info := limiter.Allow("caller")
		require.True(t, allowed)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := limiter.Allow("caller")
	assert.False(t, allowed)
	// The budget stays the configured constant even when blocked.
	assert.Equal(t, 3, info.Limit)
	assert.Zero(t, info.Remaining)
	assert.Positive(t, info.RetryAfter)
}

func TestAllowIsolatesIdentifiers(t *testing.T) {
	limiter := NewMemoryRateLimiter(&Config{
		WindowSize:    time.Minute,
		MaxAttempts:   1,
		CleanupPeriod: time.Minute,
	})
	defer limiter.Close()

	allowed, _ := limiter.Allow("a")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("a")
	require.False(t, allowed)

	allowed, _ = limiter.Allow("b")
	assert.True(t, allowed)
}

func TestWindowResets(t *testing.T) {
	limiter := NewMemoryRateLimiter(&Config{
		WindowSize:    10 * time.Millisecond,
		MaxAttempts:   1,
		CleanupPeriod: time.Minute,
	})
	defer limiter.Close()

	allowed, _ := limiter.Allow("caller")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("caller")
	require.False(t, allowed)

	time.Sleep(15 * time.Millisecond)

	allowed, _ = limiter.Allow("caller")
	assert.True(t, allowed)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	assert.Equal(t, "10.0.0.1", GetClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", GetClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", GetClientIP(req))
}
