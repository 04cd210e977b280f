package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"social-backend/internal/models"
	"social-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// UserService handles profiles, follows and push tokens
type UserService struct {
	userRepo            UserStore
	postRepo            PostStore
	authService         *AuthService
	notificationService *NotificationService
}

// NewUserService creates a new user service
func NewUserService(
	userRepo UserStore,
	postRepo PostStore,
	authService *AuthService,
	notificationService *NotificationService,
) *UserService {
	return &UserService{
		userRepo:            userRepo,
		postRepo:            postRepo,
		authService:         authService,
		notificationService: notificationService,
	}
}

// UpdateProfileRequest carries the optional profile fields to change
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

// UpdateProfileResult is the updated user plus a token re-signed with the
// new username
type UpdateProfileResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// PublicProfile returns what other users see on a profile page
func (s *UserService) PublicProfile(ctx context.Context, id string) (*models.PublicProfile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	postsCount, err := s.postRepo.CountByAuthor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	return &models.PublicProfile{
		ID:                user.ID,
		Username:          user.Username,
		CreatedAt:         user.CreatedAt,
		ProfilePictureURL: user.ProfilePictureURL,
		Bio:               user.Bio,
		FollowersCount:    len(user.Followers),
		FollowingCount:    len(user.Following),
		PostsCount:        postsCount,
	}, nil
}

// PrivateProfile returns the caller's own editable profile
func (s *UserService) PrivateProfile(ctx context.Context, id string) (*models.PrivateProfile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PrivateProfile{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Bio:               user.Bio,
		ProfilePictureURL: user.ProfilePictureURL,
	}, nil
}

// UpdateProfile changes username and/or bio. An empty username leaves it
// unchanged; an empty bio clears it.
func (s *UserService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*UpdateProfileResult, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	username := user.Username
	if req.Username != nil {
		if candidate := strings.TrimSpace(*req.Username); candidate != "" && candidate != user.Username {
			taken, err := s.userRepo.UsernameExists(ctx, candidate)
			if err != nil {
				return nil, fmt.Errorf("failed to check username: %w", err)
			}
			if taken {
				return nil, ErrUsernameTaken
			}
			username = candidate
		}
	}

	bio := user.Bio
	if req.Bio != nil {
		if utf8.RuneCountInString(*req.Bio) > models.MaxBioLength {
			return nil, ErrBioTooLong
		}
		bio = *req.Bio
	}

	updated, err := s.userRepo.UpdateProfile(ctx, id, username, bio)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	token, err := s.authService.GenerateToken(updated)
	if err != nil {
		return nil, err
	}

	return &UpdateProfileResult{User: updated, Token: token}, nil
}

// ToggleFollow makes currentID follow targetID, or unfollow if already
// following. It reports whether currentID now follows targetID.
func (s *UserService) ToggleFollow(ctx context.Context, currentID, targetID string) (bool, error) {
	if currentID == targetID {
		return false, ErrCannotFollowSelf
	}

	if _, err := s.GetUser(ctx, targetID); err != nil {
		return false, err
	}
	current, err := s.GetUser(ctx, currentID)
	if err != nil {
		return false, err
	}

	if containsID(current.Following, targetID) {
		if err := s.userRepo.Unfollow(ctx, currentID, targetID); err != nil {
			return false, err
		}
		if err := s.notificationService.ClearFollow(ctx, targetID, currentID); err != nil {
			log.Error().
				Err(err).
				Str("user_id", currentID).
				Str("target_id", targetID).
				Msg("Failed to delete follow notification")
		}
		return false, nil
	}

	if err := s.userRepo.Follow(ctx, currentID, targetID); err != nil {
		return false, err
	}
	if _, err := s.notificationService.NotifyFollow(ctx, current.Summary(), targetID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", currentID).
			Str("target_id", targetID).
			Msg("Failed to create follow notification")
	}
	return true, nil
}

// SetPushToken stores the device token used for push notifications; an
// empty token clears it
func (s *UserService) SetPushToken(ctx context.Context, userID, pushToken string) error {
	var token *string
	if pushToken = strings.TrimSpace(pushToken); pushToken != "" {
		token = &pushToken
	}
	if err := s.userRepo.UpdatePushToken(ctx, userID, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
