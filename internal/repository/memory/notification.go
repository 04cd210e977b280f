package memory

import (
	"context"
	"sort"
	"time"

	"social-backend/internal/models"
)

// NotificationRepository stores notifications in memory
type NotificationRepository struct {
	db *DB
}

func storedNotification(n *models.Notification) *models.Notification {
	out := *n
	out.Post = nil
	if n.PostID != nil {
		postID := *n.PostID
		out.PostID = &postID
	}
	return &out
}

// Create creates a new notification
func (r *NotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.notifications = append(r.db.notifications, storedNotification(n))
	return nil
}

// CreateFollowOnce inserts a follow notification unless one already exists
func (r *NotificationRepository) CreateFollowOnce(_ context.Context, n *models.Notification) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.notifications {
		if existing.Type == models.NotificationFollow &&
			existing.UserTo == n.UserTo && existing.UserFrom.ID == n.UserFrom.ID {
			return false, nil
		}
	}
	stored := storedNotification(n)
	stored.Type = models.NotificationFollow
	stored.PostID = nil
	r.db.notifications = append(r.db.notifications, stored)
	return true, nil
}

// DeleteFollow removes the follow notification from userFrom to userTo
func (r *NotificationRepository) DeleteFollow(_ context.Context, userTo, userFrom string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.deleteWhere(func(n *models.Notification) bool {
		return n.Type == models.NotificationFollow && n.UserTo == userTo && n.UserFrom.ID == userFrom
	})
	return nil
}

// DeleteByPost removes every notification referencing a post
func (r *NotificationRepository) DeleteByPost(_ context.Context, postID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.deleteWhere(func(n *models.Notification) bool {
		return n.PostID != nil && *n.PostID == postID
	}), nil
}

// DeleteComments removes the comment notifications userFrom caused on a post
func (r *NotificationRepository) DeleteComments(_ context.Context, postID, userFrom string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.deleteWhere(func(n *models.Notification) bool {
		return n.Type == models.NotificationComment && n.UserFrom.ID == userFrom &&
			n.PostID != nil && *n.PostID == postID
	}), nil
}

// ListForUser returns the notifications addressed to a user, newest first,
// with sender and post populated
func (r *NotificationRepository) ListForUser(_ context.Context, userID string) ([]*models.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []*models.Notification{}
	for i := len(r.db.notifications) - 1; i >= 0; i-- {
		n := r.db.notifications[i]
		if n.UserTo != userID {
			continue
		}
		populated := storedNotification(n)
		if sender, ok := r.db.users[n.UserFrom.ID]; ok {
			populated.UserFrom = sender.Summary()
		}
		if n.PostID != nil {
			if post, ok := r.db.posts[*n.PostID]; ok {
				populated.Post = &models.PostSummary{ID: post.ID, Text: post.Text, ImageURL: post.ImageURL}
			}
		}
		out = append(out, populated)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CountUnread counts the unread notifications of a user
func (r *NotificationRepository) CountUnread(_ context.Context, userID string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	count := 0
	for _, n := range r.db.notifications {
		if n.UserTo == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkAllRead marks every unread notification of a user as read
func (r *NotificationRepository) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var updated int64
	now := time.Now()
	for _, n := range r.db.notifications {
		if n.UserTo == userID && !n.Read {
			n.Read = true
			n.UpdatedAt = now
			updated++
		}
	}
	return updated, nil
}

// deleteWhere drops matching notifications. Caller holds the write lock.
func (r *NotificationRepository) deleteWhere(match func(*models.Notification) bool) int64 {
	kept := r.db.notifications[:0]
	var deleted int64
	for _, n := range r.db.notifications {
		if match(n) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.db.notifications = kept
	return deleted
}
