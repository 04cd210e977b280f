package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"social-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Deliverer hands a freshly created notification to an out-of-band channel
// such as a live websocket or a device push
type Deliverer interface {
	Deliver(ctx context.Context, n *models.Notification) error
}

// NotificationService handles notification-related business logic
type NotificationService struct {
	notificationRepo NotificationStore
	deliverers       []Deliverer
	deliveries       sync.WaitGroup
	now              func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo NotificationStore, deliverers ...Deliverer) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		deliverers:       deliverers,
		now:              time.Now,
	}
}

// AddDeliverer registers another delivery channel. Call it before the
// service starts handling requests.
func (s *NotificationService) AddDeliverer(d Deliverer) {
	s.deliverers = append(s.deliverers, d)
}

func (s *NotificationService) build(userTo string, from models.UserSummary, post *models.Post, kind string) *models.Notification {
	now := s.now()
	n := &models.Notification{
		ID:        uuid.New().String(),
		UserTo:    userTo,
		UserFrom:  from,
		Type:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if post != nil {
		postID := post.ID
		n.PostID = &postID
		n.Post = &models.PostSummary{ID: post.ID, Text: post.Text, ImageURL: post.ImageURL}
	}
	return n
}

// NotifyPost records a like or comment notification on post for its author.
// Nothing is recorded when the sender is the author.
func (s *NotificationService) NotifyPost(ctx context.Context, from models.UserSummary, post *models.Post, kind string) (*models.Notification, error) {
	if post.UserID == from.ID {
		return nil, nil
	}

	n := s.build(post.UserID, from, post, kind)
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create %s notification: %w", kind, err)
	}

	s.deliver(ctx, n)
	return n, nil
}

// NotifyFollow records a follow notification unless one already exists
func (s *NotificationService) NotifyFollow(ctx context.Context, from models.UserSummary, userTo string) (*models.Notification, error) {
	n := s.build(userTo, from, nil, models.NotificationFollow)
	created, err := s.notificationRepo.CreateFollowOnce(ctx, n)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}

	s.deliver(ctx, n)
	return n, nil
}

// ClearFollow removes the follow notification sent by userFrom to userTo
func (s *NotificationService) ClearFollow(ctx context.Context, userTo, userFrom string) error {
	return s.notificationRepo.DeleteFollow(ctx, userTo, userFrom)
}

// ClearPost removes every notification referencing a post
func (s *NotificationService) ClearPost(ctx context.Context, postID string) error {
	_, err := s.notificationRepo.DeleteByPost(ctx, postID)
	return err
}

// ClearComments removes the comment notifications userFrom caused on a post
func (s *NotificationService) ClearComments(ctx context.Context, postID, userFrom string) error {
	_, err := s.notificationRepo.DeleteComments(ctx, postID, userFrom)
	return err
}

// List returns the notifications addressed to a user, newest first
func (s *NotificationService) List(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.notificationRepo.ListForUser(ctx, userID)
}

// UnreadCount counts the unread notifications of a user
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// MarkAllRead marks every unread notification of a user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// Wait blocks until every in-flight delivery has finished
func (s *NotificationService) Wait() {
	s.deliveries.Wait()
}

// deliver fans n out to every channel in the background so a slow channel
// never holds up the request that caused it. Failures are logged only.
func (s *NotificationService) deliver(ctx context.Context, n *models.Notification) {
	if len(s.deliverers) == 0 {
		return
	}

	deliverers := s.deliverers
	ctx = context.WithoutCancel(ctx)

	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()
		for _, d := range deliverers {
			if err := d.Deliver(ctx, n); err != nil {
				log.Warn().
					Err(err).
					Str("notification_id", n.ID).
					Str("user_id", n.UserTo).
					Msg("Failed to deliver notification")
			}
		}
	}()
}
