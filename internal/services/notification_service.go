package services

import (
	"context"
	"fmt"
	"time"

	"wavvly/internal/metrics"
	"wavvly/internal/models"
	"wavvly/internal/repositories"
	apperrors "wavvly/pkg/errors"
	"wavvly/pkg/logger"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NotificationService stores notifications and announces them on the broker.
type NotificationService struct {
	repo      repositories.NotificationRepository
	users     repositories.UserRepository
	publisher EventPublisher // nil when no broker is configured
	log       *zap.Logger
	now       func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository, publisher EventPublisher) *NotificationService {
	return &NotificationService{
		repo:      repo,
		users:     users,
		publisher: publisher,
		log:       logger.Named("notifications"),
		now:       time.Now,
	}
}

func notificationMessage(kind models.NotificationType, sender *models.User) string {
	switch kind {
	case models.NotificationLike:
		return fmt.Sprintf("%s liked your post", sender.DisplayName())
	case models.NotificationComment:
		return fmt.Sprintf("%s commented on your post", sender.DisplayName())
	case models.NotificationFollow:
		return fmt.Sprintf("%s started following you", sender.DisplayName())
	default:
		return fmt.Sprintf("%s interacted with you", sender.DisplayName())
	}
}

// Notify records that sender did kind to recipientID. Nothing is created when
// the sender is the recipient; in that case nil is returned.
func (s *NotificationService) Notify(ctx context.Context, recipientID string, sender *models.User, kind models.NotificationType, postID *string) (*models.Notification, error) {
	if sender == nil || recipientID == sender.ID {
		return nil, nil
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		SenderID:    sender.ID,
		Type:        kind,
		Message:     notificationMessage(kind, sender),
		PostID:      postID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.WithLabelValues(string(kind)).Inc()

	if s.publisher != nil {
		event := NotificationEvent{
			ID:          notification.ID,
			RecipientID: notification.RecipientID,
			SenderID:    notification.SenderID,
			Type:        string(notification.Type),
			Message:     notification.Message,
			PostID:      notification.PostID,
			CreatedAt:   notification.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, NotificationCreatedEvent, event); err != nil {
			metrics.EventPublishFailures.Inc()
			s.log.Warn("failed to publish notification event",
				zap.String("notification_id", notification.ID), zap.Error(err))
		}
	}
	return notification, nil
}

// List returns one page of the recipient's notifications, newest first, with
// the unread total. The page and the count are read concurrently.
func (s *NotificationService) List(ctx context.Context, recipientID string, page, limit int) (*models.NotificationPage, error) {
	var (
		notifications []models.Notification
		unread        int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		notifications, err = s.repo.ListByRecipient(gctx, recipientID, (page-1)*limit, limit)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = s.repo.CountUnread(gctx, recipientID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	senderIDs := lo.Uniq(lo.Map(notifications, func(n models.Notification, _ int) string { return n.SenderID }))
	senders, err := summaries(ctx, s.users, senderIDs)
	if err != nil {
		return nil, err
	}

	views := lo.Map(notifications, func(n models.Notification, _ int) models.NotificationView {
		return models.NotificationView{
			ID:        n.ID,
			Type:      n.Type,
			Message:   n.Message,
			From:      senders.get(n.SenderID),
			Post:      n.PostID,
			Read:      n.IsRead,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		}
	})
	return &models.NotificationPage{
		Notifications: views,
		UnreadCount:   unread,
		CurrentPage:   page,
		HasMore:       len(views) == limit,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

func (s *NotificationService) owned(ctx context.Context, actorID, id, action string) (*models.Notification, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.RecipientID != actorID {
		return nil, apperrors.NewNotAuthorized("notification", id, action)
	}
	return notification, nil
}

// MarkRead marks one of the actor's notifications as read. Marking an
// already read notification is a no-op that keeps the first read time.
func (s *NotificationService) MarkRead(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id, "update"); err != nil {
		return err
	}
	_, err := s.repo.MarkRead(ctx, id, s.now())
	return err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actorID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, actorID, s.now())
}

// Delete removes one of the actor's notifications.
func (s *NotificationService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id, "delete"); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
