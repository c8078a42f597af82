// File: internal/middleware/constants.go
package middleware

import "context"

// Context keys for middleware communication
type contextKey string

const UserIDKey contextKey = "user_id"

// UserIDFromContext returns the authenticated caller's ID, if present.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(UserIDKey).(uint)
	return userID, ok
}
