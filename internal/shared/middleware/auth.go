package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"fintrack/internal/shared/auth"
)

type ContextKey string

const UserIDKey ContextKey = "user_id"

// UserID returns the authenticated user stored by Auth.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok && id > 0
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": "unauthenticated"})
}

func Auth(jwt *auth.JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			// Cookie for browser sessions, bearer header for API clients
			if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
				token = cookie.Value
			} else {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					unauthorized(w, "Authentication required")
					return
				}
				scheme, value, ok := strings.Cut(authHeader, " ")
				if !ok || !strings.EqualFold(scheme, "Bearer") || value == "" {
					unauthorized(w, "Invalid authorization header format")
					return
				}
				token = value
			}

			claims, err := jwt.Validate(token)
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
