package services

import (
	"context"
	"errors"

	"social-backend/internal/models"
)

var (
	ErrMissingFields      = errors.New("username, email and password are required")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrNotAuthorized      = errors.New("user not authorized")
	ErrCannotFollowSelf   = errors.New("cannot follow yourself")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrBioTooLong         = errors.New("bio is too long")
	ErrEmptyPost          = errors.New("post must include text or an image url")
	ErrEmptyComment       = errors.New("comment text is required")
	ErrInvalidUpload      = errors.New("filename and image content type are required")
	ErrUploadsDisabled    = errors.New("image uploads are not configured")
)

// UserStore persists users and their id lists
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, id, username, bio string) (*models.User, error)
	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	ToggleSavedPost(ctx context.Context, userID, postID string) ([]string, error)
	SearchByUsername(ctx context.Context, query string, limit int) ([]models.UserSummary, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// PostStore persists posts and their embedded comments
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	AuthorOf(ctx context.Context, id string) (string, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []string) ([]*models.Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Post, error)
	SearchByText(ctx context.Context, query string, limit int) ([]*models.Post, error)
	CountByAuthor(ctx context.Context, authorID string) (int, error)
	ToggleLike(ctx context.Context, postID, userID string) (authorID string, liked bool, err error)
	AddComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, postID, commentID string) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
	Delete(ctx context.Context, id string) error
}

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateFollowOnce(ctx context.Context, n *models.Notification) (bool, error)
	DeleteFollow(ctx context.Context, userTo, userFrom string) error
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	DeleteComments(ctx context.Context, postID, userFrom string) (int64, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
