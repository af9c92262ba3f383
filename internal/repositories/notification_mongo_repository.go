package repositories

import (
	"context"
	"errors"
	"time"

	"wavvly/internal/models"
	apperrors "wavvly/pkg/errors"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoNotificationRepository struct {
	notifications *mongo.Collection
}

func NewMongoNotificationRepository(database *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{notifications: database.Collection(notificationsCollection)}
}

func (r *MongoNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	recipient, err := objectID(notification.RecipientID, "User")
	if err != nil {
		return err
	}
	sender, err := objectID(notification.SenderID, "User")
	if err != nil {
		return err
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	doc := notificationDocument{
		ID:        newObjectID(notification.ID),
		Recipient: recipient,
		Sender:    sender,
		Type:      string(notification.Type),
		Message:   notification.Message,
		CreatedAt: notification.CreatedAt,
	}
	if notification.PostID != nil {
		post, err := objectID(*notification.PostID, "Post")
		if err != nil {
			return err
		}
		doc.Post = &post
	}
	if _, err := r.notifications.InsertOne(ctx, doc); err != nil {
		return apperrors.Internal("failed to create notification", err)
	}
	notification.ID = doc.ID.Hex()
	return nil
}

func (r *MongoNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	oid, err := objectID(id, "Notification")
	if err != nil {
		return nil, err
	}
	var doc notificationDocument
	if err := r.notifications.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Notification not found")
		}
		return nil, apperrors.Internal("failed to get notification", err)
	}
	n := doc.toModel()
	return &n, nil
}

func (r *MongoNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]models.Notification, error) {
	recipient, err := objectID(recipientID, "User")
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.notifications.Find(ctx, bson.M{"recipient": recipient}, opts)
	if err != nil {
		return nil, apperrors.Internal("failed to list notifications", err)
	}
	var docs []notificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Internal("failed to decode notifications", err)
	}
	return lo.Map(docs, func(d notificationDocument, _ int) models.Notification { return d.toModel() }), nil
}

func (r *MongoNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	recipient, err := objectID(recipientID, "User")
	if err != nil {
		return 0, err
	}
	count, err := r.notifications.CountDocuments(ctx, bson.M{"recipient": recipient, "read": false})
	if err != nil {
		return 0, apperrors.Internal("failed to count unread notifications", err)
	}
	return count, nil
}

func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) (bool, error) {
	oid, err := objectID(id, "Notification")
	if err != nil {
		return false, err
	}
	res, err := r.notifications.UpdateOne(ctx,
		bson.M{"_id": oid, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": at}})
	if err != nil {
		return false, apperrors.Internal("failed to mark notification as read", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	recipient, err := objectID(recipientID, "User")
	if err != nil {
		return 0, err
	}
	res, err := r.notifications.UpdateMany(ctx,
		bson.M{"recipient": recipient, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": at}})
	if err != nil {
		return 0, apperrors.Internal("failed to mark notifications as read", err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoNotificationRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, "Notification")
	if err != nil {
		return err
	}
	res, err := r.notifications.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperrors.Internal("failed to delete notification", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("Notification not found")
	}
	return nil
}
