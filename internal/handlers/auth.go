package handlers

import (
	"net/http"

	"social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup and login
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SignupRequest represents the request body for signing up
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "sign up")
		return
	}

	log.Info().
		Str("user_id", result.User.ID).
		Str("username", result.User.Username).
		Msg("User signed up")

	respondJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "log in")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
