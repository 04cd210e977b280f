package repository

import (
	"context"
	"errors"
	"fmt"

	"social-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_to, user_from, post_id, type, read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		n.ID, n.UserTo, n.UserFrom.ID, n.PostID, n.Type, n.Read, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// CreateFollowOnce inserts a follow notification unless one already exists
// for the same pair of users. It reports whether a row was inserted.
func (r *NotificationRepository) CreateFollowOnce(ctx context.Context, n *models.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (id, user_to, user_from, post_id, type, read, created_at, updated_at)
		VALUES ($1, $2, $3, NULL, 'follow', false, $4, $5)
		ON CONFLICT (user_to, user_from) WHERE type = 'follow' DO NOTHING
		RETURNING id
	`
	var id string
	err := r.db.QueryRow(ctx, query, n.ID, n.UserTo, n.UserFrom.ID, n.CreatedAt, n.UpdatedAt).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create follow notification: %w", err)
	}
	return true, nil
}

// DeleteFollow removes the follow notification from userFrom to userTo
func (r *NotificationRepository) DeleteFollow(ctx context.Context, userTo, userFrom string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE user_to = $1 AND user_from = $2 AND type = 'follow'`,
		userTo, userFrom,
	)
	if err != nil {
		return fmt.Errorf("failed to delete follow notification: %w", err)
	}
	return nil
}

// DeleteByPost removes every notification referencing a post
func (r *NotificationRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete post notifications: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteComments removes the comment notifications userFrom caused on a post
func (r *NotificationRepository) DeleteComments(ctx context.Context, postID, userFrom string) (int64, error) {
	result, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE post_id = $1 AND user_from = $2 AND type = 'comment'`,
		postID, userFrom,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comment notifications: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListForUser returns all notifications addressed to a user, newest first,
// with the sender and post populated
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	query := `
		SELECT n.id, n.user_to, n.user_from, u.username, u.profile_picture_url,
			n.post_id, p.text, p.image_url, n.type, n.read, n.created_at, n.updated_at
		FROM notifications n
		JOIN users u ON u.id = n.user_from
		LEFT JOIN posts p ON p.id = n.post_id
		WHERE n.user_to = $1
		ORDER BY n.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		var n models.Notification
		var postText, postImage *string
		err := rows.Scan(
			&n.ID, &n.UserTo, &n.UserFrom.ID, &n.UserFrom.Username, &n.UserFrom.ProfilePictureURL,
			&n.PostID, &postText, &postImage, &n.Type, &n.Read, &n.CreatedAt, &n.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		// a dangling post reference populates as null
		if n.PostID != nil && postText != nil {
			n.Post = &models.PostSummary{ID: *n.PostID, Text: *postText}
			if postImage != nil {
				n.Post.ImageURL = *postImage
			}
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread counts the unread notifications of a user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_to = $1 AND NOT read`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAllRead marks every unread notification of a user as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = true, updated_at = now() WHERE user_to = $1 AND NOT read`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected(), nil
}
