package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/medlabel/go-medlabel/internal/auth"
)

// NewJWTMiddleware creates middleware that resolves the Authorization bearer
// token to a user ID and stores it in the request context. Requests without a
// valid token get a JSON 401.
func NewJWTMiddleware(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Missing authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w, "Invalid authorization header")
				return
			}

			userID, err := auth.ValidateToken(token, secretKey)
			if err != nil {
				log.Printf("[AuthMiddleware] Invalid token: %v", err)
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
