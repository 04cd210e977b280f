package handlers

import (
	"encoding/json"
	"net/http"

	"social-backend/internal/middleware"
	"social-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub                 *services.WSHub
	validator           middleware.TokenValidator
	notificationService *services.NotificationService
	upgrader            websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. Browser origins are
// checked against allowedOrigins; "*" allows any origin.
func NewWebSocketHandler(
	hub *services.WSHub,
	validator middleware.TokenValidator,
	notificationService *services.NotificationService,
	allowedOrigins []string,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:                 hub,
		validator:           validator,
		notificationService: notificationService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), allowedOrigins)
			},
		},
	}
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, candidate := range allowed {
		if candidate == "*" || candidate == origin {
			return true
		}
	}
	return false
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "No token, authorization denied", http.StatusUnauthorized)
		return
	}

	user, err := h.validator.ValidateToken(token)
	if err != nil {
		respondError(w, "Token is not valid", http.StatusUnauthorized)
		return
	}
	userID := user.ID

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	count, err := h.notificationService.UnreadCount(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to count unread notifications")
	} else if err := h.hub.SendUnreadCount(userID, count); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send unread_count message")
	}

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.sendError(userID, "Invalid message format")
			continue
		}

		switch msg.Type {
		case services.WSTypePing:
			if err := h.hub.SendToUser(userID, services.WSMessage{Type: services.WSTypePong}); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("Failed to send pong")
			}
		default:
			h.sendError(userID, "Unknown message type")
		}
	}
}

// sendError sends an error message to a user
func (h *WebSocketHandler) sendError(userID, message string) {
	err := h.hub.SendToUser(userID, services.WSMessage{
		Type:    services.WSTypeError,
		Message: message,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send error message")
	}
}
