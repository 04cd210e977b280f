package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-backend/internal/config"
	"social-backend/internal/models"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

const pushTimeout = 5 * time.Second

// APNSPusher sends new notifications to the recipient's iOS device
type APNSPusher struct {
	push     func(ctx context.Context, n *apns2.Notification) (*apns2.Response, error)
	topic    string
	userRepo UserStore
}

// NewAPNSPusher loads the p12 certificate and builds an APNs client
func NewAPNSPusher(cfg config.APNSConfig, userRepo UserStore) (*APNSPusher, error) {
	cert, err := certificate.FromP12File(cfg.CertFile, cfg.CertPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNSPusher{
		push: func(ctx context.Context, n *apns2.Notification) (*apns2.Response, error) {
			return client.PushWithContext(ctx, n)
		},
		topic:    cfg.Topic,
		userRepo: userRepo,
	}, nil
}

// Deliver pushes n to the recipient's device if they registered one
func (p *APNSPusher) Deliver(ctx context.Context, n *models.Notification) error {
	recipient, err := p.userRepo.GetByID(ctx, n.UserTo)
	if err != nil {
		return fmt.Errorf("failed to get recipient: %w", err)
	}
	if recipient.PushToken == nil || *recipient.PushToken == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	res, err := p.push(ctx, &apns2.Notification{
		DeviceToken: *recipient.PushToken,
		Topic:       p.topic,
		Payload: payload.NewPayload().
			Alert(alertText(n)).
			Sound("default").
			Custom("notificationId", n.ID).
			Custom("type", n.Type),
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		if res.Reason == apns2.ReasonUnregistered || res.Reason == apns2.ReasonBadDeviceToken {
			if err := p.userRepo.UpdatePushToken(ctx, recipient.ID, nil); err != nil {
				return fmt.Errorf("failed to clear stale push token: %w", err)
			}
		}
		return errors.New("apns rejected push: " + res.Reason)
	}
	return nil
}

func alertText(n *models.Notification) string {
	switch n.Type {
	case models.NotificationLike:
		return n.UserFrom.Username + " liked your post"
	case models.NotificationComment:
		return n.UserFrom.Username + " commented on your post"
	case models.NotificationFollow:
		return n.UserFrom.Username + " started following you"
	default:
		return "You have a new notification"
	}
}
