package handlers

import (
	"net/http"

	"social-backend/internal/middleware"
	"social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// CreatePostRequest represents the request body for creating a post
type CreatePostRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// CommentRequest represents the request body for commenting on a post
type CommentRequest struct {
	Text string `json:"text"`
}

// SavedPostsResponse is returned after toggling a saved post
type SavedPostsResponse struct {
	SavedPosts []string `json:"savedPosts"`
}

// Explore handles GET /api/posts
func (h *PostHandler) Explore(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.Explore(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "get posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Following handles GET /api/posts/following
func (h *PostHandler) Following(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.FollowingFeed(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get following feed")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Saved handles GET /api/posts/saved
func (h *PostHandler) Saved(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.Saved(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get saved posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// ByUser handles GET /api/posts/user/{userId}
func (h *PostHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", services.ErrUserNotFound)
	if !ok {
		return
	}

	posts, err := h.postService.ByUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "get user posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// CreatePost handles POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.CreatePost(ctx, userID, req.Text, req.ImageURL)
	if err != nil {
		respondServiceError(w, r, err, "create post")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("post_id", post.ID).
		Msg("Post created")

	respondJSON(w, http.StatusCreated, post)
}

// ToggleLike handles PUT /api/posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id", services.ErrPostNotFound)
	if !ok {
		return
	}

	post, err := h.postService.ToggleLike(r.Context(), postID, middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "toggle like")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// AddComment handles POST /api/posts/{id}/comment
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id", services.ErrPostNotFound)
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.AddComment(r.Context(), postID, middleware.GetUserID(r.Context()), req.Text)
	if err != nil {
		respondServiceError(w, r, err, "add comment")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// ToggleSave handles POST /api/posts/{id}/save
func (h *PostHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id", services.ErrPostNotFound)
	if !ok {
		return
	}

	saved, err := h.postService.ToggleSave(r.Context(), postID, middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "toggle saved post")
		return
	}
	respondJSON(w, http.StatusOK, SavedPostsResponse{SavedPosts: saved})
}

// DeletePost handles DELETE /api/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	postID, ok := pathID(w, r, "id", services.ErrPostNotFound)
	if !ok {
		return
	}

	if err := h.postService.DeletePost(ctx, postID, userID); err != nil {
		respondServiceError(w, r, err, "delete post")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("post_id", postID).
		Msg("Post deleted")

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
}

// DeleteComment handles DELETE /api/posts/{id}/comment/{commentId}
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id", services.ErrPostNotFound)
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId", services.ErrCommentNotFound)
	if !ok {
		return
	}

	post, err := h.postService.DeleteComment(r.Context(), postID, commentID, middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "delete comment")
		return
	}
	respondJSON(w, http.StatusOK, post)
}
