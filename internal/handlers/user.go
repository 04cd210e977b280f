package handlers

import (
	"net/http"

	"social-backend/internal/middleware"
	"social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// PushTokenRequest represents the request body for registering a device
type PushTokenRequest struct {
	PushToken string `json:"pushToken"`
}

// GetProfile handles GET /api/users/profile/{userId}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", services.ErrUserNotFound)
	if !ok {
		return
	}

	profile, err := h.userService.PublicProfile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "get profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// GetOwnProfile handles GET /api/users/profile
func (h *UserHandler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.PrivateProfile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get own profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.userService.UpdateProfile(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "update profile")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("username", result.User.Username).
		Msg("Profile updated")

	respondJSON(w, http.StatusOK, result)
}

// ToggleFollow handles POST /api/users/{id}/follow
func (h *UserHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	targetID, ok := pathID(w, r, "id", services.ErrUserNotFound)
	if !ok {
		return
	}

	followed, err := h.userService.ToggleFollow(ctx, userID, targetID)
	if err != nil {
		respondServiceError(w, r, err, "toggle follow")
		return
	}

	if followed {
		respondJSON(w, http.StatusOK, MessageResponse{Message: "User followed."})
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "User unfollowed."})
}

// SetPushToken handles PUT /api/users/push-token
func (h *UserHandler) SetPushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userService.SetPushToken(ctx, userID, req.PushToken); err != nil {
		respondServiceError(w, r, err, "update push token")
		return
	}

	log.Info().Str("user_id", userID).Msg("Push token updated")
	w.WriteHeader(http.StatusNoContent)
}
