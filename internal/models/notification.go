package models

import "time"

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// Notification tells a recipient that someone interacted with them.
// ReadAt is set on the first transition to read and never changes after.
type Notification struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(24)"`
	RecipientID string           `json:"recipient" gorm:"type:varchar(24);index;not null"`
	SenderID    string           `json:"sender" gorm:"type:varchar(24);not null"`
	Type        NotificationType `json:"type" gorm:"type:varchar(16);not null"`
	Message     string           `json:"message" gorm:"type:varchar(255);not null"`
	PostID      *string          `json:"post,omitempty" gorm:"type:varchar(24)"`
	IsRead      bool             `json:"read" gorm:"index"`
	ReadAt      *time.Time       `json:"readAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt" gorm:"index"`
}
