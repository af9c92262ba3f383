package services_test

import (
	"context"
	"testing"

	"wavvly/internal/models"
	"wavvly/internal/services"
	apperrors "wavvly/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Profile(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewUserService(store.Users, store.Posts)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	_, err := store.Users.AddFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	post(t, store, alice, "one")
	post(t, store, alice, "two")

	profile, err := svc.GetProfile(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.FollowerCount)
	assert.Equal(t, 0, profile.FollowingCount)
	assert.Equal(t, int64(2), profile.PostCount)
	assert.True(t, profile.IsFollowing)

	byName, err := svc.GetProfileByUsername(ctx, "", "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)
	assert.False(t, byName.IsFollowing)

	_, err = svc.GetProfile(ctx, "", models.NewID())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewUserService(store.Users, store.Posts)
	alice := seedUser(t, store, "alice")

	name := "Alice Liddell"
	bio := "<b>down</b> the rabbit hole"
	profile, err := svc.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{FullName: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, name, profile.FullName)
	assert.Equal(t, "down the rabbit hole", profile.Bio)

	empty := ""
	_, err = svc.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{FullName: &empty})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestUserService_SearchAndSuggested(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewUserService(store.Users, store.Posts)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	seedUser(t, store, "carol")

	_, err := svc.Search(ctx, " a ")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	found, err := svc.Search(ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, alice.ID, found[0].ID)

	_, err = store.Users.AddFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	suggested, err := svc.Suggested(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, suggested, 1)
	assert.Equal(t, "carol", suggested[0].Username)
}
