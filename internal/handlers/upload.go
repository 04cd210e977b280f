package handlers

import (
	"net/http"

	"social-backend/internal/middleware"
	"social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UploadHandler handles image upload requests
type UploadHandler struct {
	uploadService *services.UploadService
}

// NewUploadHandler creates a new upload handler. uploadService may be nil
// when S3 is not configured.
func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
	}
}

// PresignImage handles POST /api/uploads/image
func (h *UploadHandler) PresignImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if h.uploadService == nil {
		respondServiceError(w, r, services.ErrUploadsDisabled, "presign upload")
		return
	}

	var req services.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.uploadService.PresignImageUpload(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "presign upload")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("filename", req.Filename).
		Str("image_url", response.ImageURL).
		Msg("Pre-signed URL generated")

	respondJSON(w, http.StatusOK, response)
}
