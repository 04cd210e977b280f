package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"social-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MessageResponse is the body of every error and of plain acknowledgements
type MessageResponse struct {
	Message string `json:"message"`
}

// errorMapping turns a service error into a status code and a client message
type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{services.ErrMissingFields, http.StatusBadRequest, "Please enter all fields"},
	{services.ErrUserExists, http.StatusBadRequest, "User already exists"},
	{services.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
	{services.ErrInvalidToken, http.StatusUnauthorized, "Token is not valid"},
	{services.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{services.ErrPostNotFound, http.StatusNotFound, "Post not found"},
	{services.ErrCommentNotFound, http.StatusNotFound, "Comment not found"},
	{services.ErrNotAuthorized, http.StatusUnauthorized, "User not authorized"},
	{services.ErrCannotFollowSelf, http.StatusBadRequest, "You cannot follow yourself."},
	{services.ErrUsernameTaken, http.StatusBadRequest, "Username already taken"},
	{services.ErrBioTooLong, http.StatusBadRequest, "Bio must be 160 characters or less"},
	{services.ErrEmptyPost, http.StatusBadRequest, "Post must include text or an image URL"},
	{services.ErrEmptyComment, http.StatusBadRequest, "Comment text is required"},
	{services.ErrInvalidUpload, http.StatusBadRequest, "A filename and an image content type are required"},
	{services.ErrUploadsDisabled, http.StatusServiceUnavailable, "Image uploads are not configured"},
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, MessageResponse{Message: message})
}

// respondServiceError maps err onto a client error, or logs it and sends 500
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			respondError(w, m.message, m.status)
			return
		}
	}

	log.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Failed to " + action)
	respondError(w, "Server error", http.StatusInternalServerError)
}

// decodeJSON reads a JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// pathID reads a uuid path parameter. Malformed ids are reported as notFound
// since no stored record can carry them.
func pathID(w http.ResponseWriter, r *http.Request, name string, notFound error) (string, bool) {
	id := chi.URLParam(r, name)
	if _, err := uuid.Parse(id); err != nil {
		respondServiceError(w, r, notFound, "parse id")
		return "", false
	}
	return id, true
}
