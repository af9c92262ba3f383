package repositories

import (
	"context"
	"errors"
	"time"

	"wavvly/internal/models"
	apperrors "wavvly/pkg/errors"

	"gorm.io/gorm"
)

// GORMNotificationRepository is a GORM implementation of NotificationRepository.
type GORMNotificationRepository struct {
	db *gorm.DB
}

// NewGORMNotificationRepository creates a new instance of GORMNotificationRepository.
func NewGORMNotificationRepository(db *gorm.DB) *GORMNotificationRepository {
	return &GORMNotificationRepository{db: db}
}

func (r *GORMNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = models.NewID()
	}
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return apperrors.Internal("failed to create notification", err)
	}
	return nil
}

func (r *GORMNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Notification not found")
		}
		return nil, apperrors.Internal("failed to get notification", err)
	}
	return &notification, nil
}

func (r *GORMNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, apperrors.Internal("failed to list notifications", err)
	}
	return notifications, nil
}

func (r *GORMNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Internal("failed to count unread notifications", err)
	}
	return count, nil
}

// MarkRead only matches unread rows, so readAt is written once.
func (r *GORMNotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if res.Error != nil {
		return false, apperrors.Internal("failed to mark notification as read", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMNotificationRepository) MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if res.Error != nil {
		return 0, apperrors.Internal("failed to mark notifications as read", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GORMNotificationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Internal("failed to delete notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Notification not found")
	}
	return nil
}
