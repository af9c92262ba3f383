package repositories

import (
	"context"
	"testing"

	apperrors "wavvly/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func updateReply(matched, modified int32) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: modified},
	)
}

// BadValue is not retryable, so the driver sends each update exactly once.
func failedReply() bson.D {
	return mtest.CreateCommandErrorResponse(mtest.CommandError{
		Code:    2,
		Name:    "BadValue",
		Message: "update rejected",
	})
}

func updateCommands(mt *mtest.T) []*event.CommandStartedEvent {
	var out []*event.CommandStartedEvent
	for _, evt := range mt.GetAllStartedEvents() {
		if evt.CommandName == "update" {
			out = append(out, evt)
		}
	}
	return out
}

func TestMongoUserRepository_FollowSaga(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("existing edge is a no-op", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, nil)
		mt.AddMockResponses(updateReply(1, 0))

		changed, err := repo.AddFollow(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.False(mt, changed)
		assert.Len(mt, updateCommands(mt), 1, "target side is left alone")
	})

	mt.Run("both sides written", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, nil)
		follower := primitive.NewObjectID()
		following := primitive.NewObjectID()
		mt.AddMockResponses(updateReply(1, 1), updateReply(1, 1))

		changed, err := repo.AddFollow(ctx, follower.Hex(), following.Hex())
		require.NoError(mt, err)
		assert.True(mt, changed)

		cmds := updateCommands(mt)
		require.Len(mt, cmds, 2)
		assert.Equal(mt, following, cmds[0].Command.Lookup("updates", "0", "q", "following", "$ne").ObjectID())
		assert.Equal(mt, following, cmds[0].Command.Lookup("updates", "0", "u", "$addToSet", "following").ObjectID())
		assert.Equal(mt, following, cmds[1].Command.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.Equal(mt, follower, cmds[1].Command.Lookup("updates", "0", "u", "$addToSet", "followers").ObjectID())
	})

	mt.Run("failed target write is undone", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, nil)
		follower := primitive.NewObjectID()
		following := primitive.NewObjectID()
		mt.AddMockResponses(updateReply(1, 1), failedReply(), updateReply(1, 1))

		changed, err := repo.AddFollow(ctx, follower.Hex(), following.Hex())
		require.Error(mt, err)
		assert.False(mt, changed)
		assert.True(mt, apperrors.IsKind(err, apperrors.KindServer))

		cmds := updateCommands(mt)
		require.Len(mt, cmds, 3)
		undo := cmds[2].Command
		assert.Equal(mt, follower, undo.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.Equal(mt, following, undo.Lookup("updates", "0", "u", "$pull", "following").ObjectID())
	})

	mt.Run("missing target is undone", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, nil)
		follower := primitive.NewObjectID()
		following := primitive.NewObjectID()
		mt.AddMockResponses(updateReply(1, 1), updateReply(0, 0), updateReply(1, 1))

		changed, err := repo.AddFollow(ctx, follower.Hex(), following.Hex())
		require.Error(mt, err)
		assert.False(mt, changed)
		assert.True(mt, apperrors.IsKind(err, apperrors.KindNotFound))

		cmds := updateCommands(mt)
		require.Len(mt, cmds, 3)
		assert.Equal(mt, following, cmds[2].Command.Lookup("updates", "0", "u", "$pull", "following").ObjectID())
	})

	mt.Run("absent edge unfollow is a no-op", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, nil)
		mt.AddMockResponses(updateReply(0, 0))

		changed, err := repo.RemoveFollow(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.False(mt, changed)
		assert.Len(mt, updateCommands(mt), 1)
	})

	mt.Run("failed unfollow target write is undone", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, nil)
		follower := primitive.NewObjectID()
		following := primitive.NewObjectID()
		mt.AddMockResponses(updateReply(1, 1), failedReply(), updateReply(1, 1))

		changed, err := repo.RemoveFollow(ctx, follower.Hex(), following.Hex())
		require.Error(mt, err)
		assert.False(mt, changed)
		assert.True(mt, apperrors.IsKind(err, apperrors.KindServer))

		cmds := updateCommands(mt)
		require.Len(mt, cmds, 3)
		undo := cmds[2].Command
		assert.Equal(mt, follower, undo.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.Equal(mt, following, undo.Lookup("updates", "0", "u", "$addToSet", "following").ObjectID())
	})

	mt.Run("first step failure writes nothing else", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, nil)
		mt.AddMockResponses(failedReply())

		changed, err := repo.AddFollow(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		require.Error(mt, err)
		assert.False(mt, changed)
		assert.Len(mt, updateCommands(mt), 1)
	})
}

func TestMongoPostRepository_ConditionalLikes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("repeat like reports false", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		user := primitive.NewObjectID()
		mt.AddMockResponses(updateReply(0, 0))

		changed, err := repo.AddLike(ctx, primitive.NewObjectID().Hex(), user.Hex())
		require.NoError(mt, err)
		assert.False(mt, changed)

		cmds := updateCommands(mt)
		require.Len(mt, cmds, 1)
		assert.Equal(mt, user, cmds[0].Command.Lookup("updates", "0", "q", "likes.user", "$ne").ObjectID())
	})

	mt.Run("first like reports true", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(updateReply(1, 1))

		changed, err := repo.AddLike(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.True(mt, changed)
	})

	mt.Run("unlike without a like reports false", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(updateReply(1, 0))

		changed, err := repo.RemoveLike(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.False(mt, changed)
	})

	mt.Run("driver failure is a server error", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(failedReply())

		changed, err := repo.AddLike(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		require.Error(mt, err)
		assert.False(mt, changed)
		assert.True(mt, apperrors.IsKind(err, apperrors.KindServer))
	})
}
