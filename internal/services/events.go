package services

import (
	"context"
	"time"
)

// NotificationCreatedEvent is the routing key of the event published for every stored notification.
const NotificationCreatedEvent = "notification.created"

// EventPublisher hands domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// NotificationEvent is the payload of NotificationCreatedEvent.
type NotificationEvent struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	SenderID    string    `json:"senderId"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	PostID      *string   `json:"postId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
