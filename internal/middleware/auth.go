package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"social-backend/internal/services"
)

type contextKey string

const userKey contextKey = "user"

// TokenValidator resolves a bearer token to the identity it carries
type TokenValidator interface {
	ValidateToken(token string) (*services.TokenUser, error)
}

// AuthMiddleware creates a middleware for JWT authentication
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				respondError(w, "No token, authorization denied", http.StatusUnauthorized)
				return
			}

			user, err := validator.ValidateToken(token)
			if err != nil {
				respondError(w, "Token is not valid", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// WithUser stores the authenticated user in ctx
func WithUser(ctx context.Context, user *services.TokenUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser extracts the authenticated user from context
func GetUser(ctx context.Context) *services.TokenUser {
	user, _ := ctx.Value(userKey).(*services.TokenUser)
	return user
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
