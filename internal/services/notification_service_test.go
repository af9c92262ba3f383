package services_test

import (
	"context"
	"testing"
	"time"

	"wavvly/internal/models"
	"wavvly/internal/services"
	apperrors "wavvly/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_NotifySkipsSelf(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := services.NewNotificationService(repo, new(MockUserRepository), nil)

	n, err := svc.Notify(context.Background(), "a", &models.User{ID: "a"}, models.NotificationLike, nil)
	assert.NoError(t, err)
	assert.Nil(t, n)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotificationService_NotifyPublishesEvent(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepository)
	publisher := new(MockPublisher)
	svc := services.NewNotificationService(repo, new(MockUserRepository), publisher)
	postID := models.NewID()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Notification")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Notification).ID = "n1"
	}).Return(nil).Once()
	publisher.On("Publish", ctx, services.NotificationCreatedEvent, mock.MatchedBy(func(e services.NotificationEvent) bool {
		return e.ID == "n1" && e.RecipientID == "b" && e.Type == "comment" && *e.PostID == postID
	})).Return(nil).Once()

	n, err := svc.Notify(ctx, "b", &models.User{ID: "a", Username: "alice"}, models.NotificationComment, &postID)
	require.NoError(t, err)
	assert.Equal(t, "alice commented on your post", n.Message)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestNotificationService_MarkReadRecipientOnly(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewNotificationService(store.Notifications, store.Users, nil)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")

	n, err := svc.Notify(ctx, alice.ID, bob, models.NotificationFollow, nil)
	require.NoError(t, err)

	err = svc.MarkRead(ctx, bob.ID, n.ID)
	assert.Equal(t, 403, apperrors.StatusCode(err))

	require.NoError(t, svc.MarkRead(ctx, alice.ID, n.ID))
	first, err := store.Notifications.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.MarkRead(ctx, alice.ID, n.ID))
	second, err := store.Notifications.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	assert.True(t, first.ReadAt.Equal(*second.ReadAt), "read time is set once")

	err = svc.MarkRead(ctx, alice.ID, models.NewID())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestNotificationService_ListMarkAllAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewNotificationService(store.Notifications, store.Users, nil)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	carol := seedUser(t, store, "carol")

	_, err := svc.Notify(ctx, alice.ID, bob, models.NotificationFollow, nil)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	latest, err := svc.Notify(ctx, alice.ID, carol, models.NotificationFollow, nil)
	require.NoError(t, err)

	page, err := svc.List(ctx, alice.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, latest.ID, page.Notifications[0].ID)
	assert.Equal(t, carol.Username, page.Notifications[0].From.Username)
	assert.Equal(t, int64(2), page.UnreadCount)
	assert.True(t, page.HasMore)

	count, err := svc.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	unread, err := svc.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	assert.Equal(t, 403, apperrors.StatusCode(svc.Delete(ctx, bob.ID, latest.ID)))
	require.NoError(t, svc.Delete(ctx, alice.ID, latest.ID))
	page, err = svc.List(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 1)
	assert.False(t, page.HasMore)
}
