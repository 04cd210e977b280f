package handlers

import (
	"net/http"

	"social-backend/internal/middleware"
	"social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
	wsHub               *services.WSHub
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService, wsHub *services.WSHub) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		wsHub:               wsHub,
	}
}

// CountResponse carries the unread notification count
type CountResponse struct {
	Count int `json:"count"`
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationService.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get notifications")
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

// Count handles GET /api/notifications/count
func (h *NotificationHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.UnreadCount(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "count notifications")
		return
	}
	respondJSON(w, http.StatusOK, CountResponse{Count: count})
}

// MarkAllRead handles PUT /api/notifications/read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if _, err := h.notificationService.MarkAllRead(r.Context(), userID); err != nil {
		respondServiceError(w, r, err, "mark notifications read")
		return
	}

	if h.wsHub != nil && h.wsHub.IsOnline(userID) {
		if err := h.wsHub.SendUnreadCount(userID, 0); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send unread_count message")
		}
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Notifications marked as read"})
}
