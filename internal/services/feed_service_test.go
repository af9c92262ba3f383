package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"wavvly/internal/models"
	"wavvly/internal/repositories"
	"wavvly/internal/services"
	apperrors "wavvly/pkg/errors"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, store *repositories.Store, author *models.User, content string) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: author.ID, Content: content, Images: []string{}, Hashtags: services.ExtractHashtags(content), Mentions: []string{}}
	require.NoError(t, store.Posts.Create(context.Background(), p))
	time.Sleep(2 * time.Millisecond) // distinct creation times
	return p
}

func ids(views []models.PostView) []string {
	return lo.Map(views, func(v models.PostView, _ int) string { return v.ID })
}

func TestFeedService_PrimaryThenBackfill(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewFeedService(store.Posts, store.Users)
	viewer := seedUser(t, store, "viewer")
	friend := seedUser(t, store, "friend")
	stranger := seedUser(t, store, "stranger")
	_, err := store.Users.AddFollow(ctx, viewer.ID, friend.ID)
	require.NoError(t, err)

	old := post(t, store, stranger, "stranger old")
	mine := post(t, store, viewer, "mine")
	fromFriend := post(t, store, friend, "friend")
	recent := post(t, store, stranger, "stranger recent")

	page, err := svc.GetFeed(ctx, viewer.ID, 1, 3)
	require.NoError(t, err)
	// primary segment newest first, then newest system-wide posts not already on the page
	assert.Equal(t, []string{fromFriend.ID, mine.ID, recent.ID}, ids(page.Posts))
	assert.True(t, page.HasMore)
	assert.Equal(t, 1, page.CurrentPage)

	page, err = svc.GetFeed(ctx, viewer.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{fromFriend.ID, mine.ID, recent.ID, old.ID}, ids(page.Posts))
	assert.False(t, page.HasMore)
}

func TestFeedService_NoDuplicatesWithinPage(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewFeedService(store.Posts, store.Users)
	viewer := seedUser(t, store, "viewer")
	for i := 0; i < 3; i++ {
		post(t, store, viewer, fmt.Sprintf("post %d", i))
	}

	page, err := svc.GetFeed(ctx, viewer.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 3)
	assert.Equal(t, len(page.Posts), len(lo.Uniq(ids(page.Posts))))
}

func TestFeedService_AnonymousAndHasMore(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewFeedService(store.Posts, store.Users)
	author := seedUser(t, store, "author")
	var created []*models.Post
	for i := 0; i < 10; i++ {
		created = append(created, post(t, store, author, fmt.Sprintf("post %d", i)))
	}

	page, err := svc.GetFeed(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 10)
	assert.True(t, page.HasMore, "an exactly full last page still reports more")
	assert.Equal(t, created[9].ID, page.Posts[0].ID)
	for _, p := range page.Posts {
		assert.False(t, p.IsLiked)
	}

	page, err = svc.GetFeed(ctx, "", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.False(t, page.HasMore)
}

func TestFeedService_IsLikedReflectsViewer(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewFeedService(store.Posts, store.Users)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	p := post(t, store, alice, "hello")
	_, err := store.Posts.AddLike(ctx, p.ID, bob.ID)
	require.NoError(t, err)

	forBob, err := svc.GetFeed(ctx, bob.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, forBob.Posts, 1)
	assert.True(t, forBob.Posts[0].IsLiked)
	assert.Equal(t, 1, forBob.Posts[0].Likes)

	forAlice, err := svc.GetFeed(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.False(t, forAlice.Posts[0].IsLiked)
}

func TestFeedService_UserPostsAndTrending(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewFeedService(store.Posts, store.Users)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	post(t, store, alice, "#golang rocks")
	post(t, store, bob, "#golang #fiber")
	post(t, store, alice, "#fiber? #golang!")

	page, err := svc.UserPosts(ctx, "", alice.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)

	_, err = svc.UserPosts(ctx, "", models.NewID(), 1, 10)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	trending, err := svc.TrendingHashtags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.HashtagCount{{Tag: "golang", Count: 3}, {Tag: "fiber", Count: 2}}, trending)
}
