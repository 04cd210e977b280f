package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"social-backend/internal/models"
	"social-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PostService handles post-related business logic
type PostService struct {
	postRepo            PostStore
	userRepo            UserStore
	notificationService *NotificationService
	now                 func() time.Time
}

// NewPostService creates a new post service
func NewPostService(postRepo PostStore, userRepo UserStore, notificationService *NotificationService) *PostService {
	return &PostService{
		postRepo:            postRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// Explore returns every post, newest first
func (s *PostService) Explore(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.ListAll(ctx)
}

// FollowingFeed returns posts by the users userID follows and by userID
// itself, newest first
func (s *PostService) FollowingFeed(ctx context.Context, userID string) ([]*models.Post, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	authors := make([]string, 0, len(user.Following)+1)
	authors = append(authors, user.Following...)
	authors = append(authors, userID)

	return s.postRepo.ListByAuthors(ctx, authors)
}

// Saved returns the posts userID has saved, newest first
func (s *PostService) Saved(ctx context.Context, userID string) ([]*models.Post, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.SavedPosts) == 0 {
		return []*models.Post{}, nil
	}
	return s.postRepo.ListByIDs(ctx, user.SavedPosts)
}

// ByUser returns the posts written by authorID, newest first
func (s *PostService) ByUser(ctx context.Context, authorID string) ([]*models.Post, error) {
	if _, err := s.getUser(ctx, authorID); err != nil {
		return nil, err
	}
	return s.postRepo.ListByAuthors(ctx, []string{authorID})
}

// CreatePost creates a post; at least one of text and imageURL is required
func (s *PostService) CreatePost(ctx context.Context, userID, text, imageURL string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	imageURL = strings.TrimSpace(imageURL)
	if text == "" && imageURL == "" {
		return nil, ErrEmptyPost
	}

	now := s.now()
	post := &models.Post{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		ImageURL:  imageURL,
		Likes:     []string{},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return s.getPost(ctx, post.ID)
}

// ToggleLike likes the post for userID, or unlikes it if already liked. The
// author is notified only when a like is added by someone else.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	authorID, liked, err := s.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if liked && authorID != userID {
		s.notify(ctx, userID, post, models.NotificationLike)
	}

	return post, nil
}

// AddComment appends a comment by userID, snapshotting the commenter's
// current username and avatar
func (s *PostService) AddComment(ctx context.Context, postID, userID, text string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	authorID, err := s.authorOf(ctx, postID)
	if err != nil {
		return nil, err
	}

	commenter, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:                uuid.New().String(),
		PostID:            postID,
		UserID:            userID,
		Username:          commenter.Username,
		ProfilePictureURL: commenter.ProfilePictureURL,
		Text:              text,
		CreatedAt:         s.now(),
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if authorID != userID {
		s.notify(ctx, userID, post, models.NotificationComment)
	}

	return post, nil
}

// ToggleSave saves the post for userID, or unsaves it if already saved, and
// returns the resulting saved list
func (s *PostService) ToggleSave(ctx context.Context, postID, userID string) ([]string, error) {
	if _, err := s.authorOf(ctx, postID); err != nil {
		return nil, err
	}

	saved, err := s.userRepo.ToggleSavedPost(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return saved, nil
}

// DeletePost deletes a post owned by userID together with every
// notification referencing it
func (s *PostService) DeletePost(ctx context.Context, postID, userID string) error {
	authorID, err := s.authorOf(ctx, postID)
	if err != nil {
		return err
	}
	if authorID != userID {
		return ErrNotAuthorized
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if err := s.notificationService.ClearPost(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post notifications: %w", err)
	}
	return nil
}

// DeleteComment removes a comment written by userID and the comment
// notifications userID caused on that post
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, userID string) (*models.Post, error) {
	if _, err := s.authorOf(ctx, postID); err != nil {
		return nil, err
	}

	comment, err := s.postRepo.GetComment(ctx, postID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotAuthorized
	}

	if err := s.postRepo.DeleteComment(ctx, postID, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if err := s.notificationService.ClearComments(ctx, postID, userID); err != nil {
		return nil, fmt.Errorf("failed to delete comment notifications: %w", err)
	}

	return s.getPost(ctx, postID)
}

// notify records a notification after the primary write has succeeded.
// A failure here does not fail the request.
func (s *PostService) notify(ctx context.Context, fromID string, post *models.Post, kind string) {
	from, err := s.getUser(ctx, fromID)
	if err != nil {
		log.Error().Err(err).Str("user_id", fromID).Msg("Failed to load notification sender")
		return
	}
	if _, err := s.notificationService.NotifyPost(ctx, from.Summary(), post, kind); err != nil {
		log.Error().
			Err(err).
			Str("post_id", post.ID).
			Str("type", kind).
			Msg("Failed to create notification")
	}
}

func (s *PostService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *PostService) getPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) authorOf(ctx context.Context, postID string) (string, error) {
	authorID, err := s.postRepo.AuthorOf(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrPostNotFound
		}
		return "", err
	}
	return authorID, nil
}
