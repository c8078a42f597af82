// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/medlabel/go-medlabel/internal/ratelimit"
)

// RateLimitMiddleware throttles a route per caller. Authenticated requests
// are keyed by user ID so a shared NAT address does not exhaust the budget;
// unauthenticated ones fall back to the client IP.
func RateLimitMiddleware(limiter *ratelimit.MemoryRateLimiter, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := ratelimit.GetClientIP(r)
			if userID, ok := UserIDFromContext(r.Context()); ok {
				identifier = "user:" + strconv.FormatUint(uint64(userID), 10)
			}

			allowed, info := limiter.Allow(identifier)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

			if !allowed {
				log.Printf("[RateLimit] Blocked %s request for %s", name, identifier)

				if info.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%.0f", info.RetryAfter.Seconds()))
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":      "Too many requests. Please try again later.",
					"retryAfter": int(info.RetryAfter.Seconds()),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
