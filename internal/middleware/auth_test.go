package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"social-backend/internal/services"

	"github.com/stretchr/testify/assert"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*services.TokenUser, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &services.TokenUser{ID: "user-1", Username: "alice"}, nil
}

func TestAuthMiddleware(t *testing.T) {
	var seen *services.TokenUser
	handler := AuthMiddleware(stubValidator{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, "No token, authorization denied"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "No token, authorization denied"},
		{"no token", "Bearer", http.StatusUnauthorized, "No token, authorization denied"},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, "Token is not valid"},
		{"valid token", "Bearer good", http.StatusNoContent, ""},
		{"lowercase scheme", "bearer good", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.JSONEq(t, `{"message":"`+tt.message+`"}`, rec.Body.String())
				assert.Nil(t, seen)
				return
			}
			if assert.NotNil(t, seen) {
				assert.Equal(t, "user-1", seen.ID)
			}
		})
	}
}

func TestGetUserID_EmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetUserID(req.Context()))
	assert.Nil(t, GetUser(req.Context()))

	ctx := WithUser(req.Context(), &services.TokenUser{ID: "user-1"})
	assert.Equal(t, "user-1", GetUserID(ctx))
}
