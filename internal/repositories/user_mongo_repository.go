package repositories

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"wavvly/internal/models"
	apperrors "wavvly/pkg/errors"
	"wavvly/pkg/logger"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoUserRepository keeps follow edges as arrays on both user documents.
// MongoDB cannot update two documents atomically without a replica-set
// transaction, so follow and unfollow run as a two-step saga under a pair lock.
type MongoUserRepository struct {
	users  *mongo.Collection
	locker PairLocker
}

func NewMongoUserRepository(database *mongo.Database, locker PairLocker) *MongoUserRepository {
	if locker == nil {
		locker = NewLocalPairLocker()
	}
	return &MongoUserRepository{users: database.Collection(usersCollection), locker: locker}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	doc := userFromModel(user)
	if doc.Followers == nil {
		doc.Followers = []primitive.ObjectID{}
	}
	if doc.Following == nil {
		doc.Following = []primitive.ObjectID{}
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("User already exists")
		}
		return apperrors.Internal("failed to create user", err)
	}
	user.ID = doc.ID.Hex()
	user.Followers = []string{}
	user.Following = []string{}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("failed to get user", err)
	}
	return doc.toModel(), nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id, "User")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, filter, opts...)
	if err != nil {
		return nil, apperrors.Internal("failed to query users", err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Internal("failed to decode users", err)
	}
	return lo.Map(docs, func(d userDocument, _ int) models.User { return *d.toModel() }), nil
}

func (r *MongoUserRepository) GetManyByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *MongoUserRepository) FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"username": bson.M{"$in": usernames}})
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error) {
	oid, err := objectID(id, "User")
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": time.Now()}
	if update.FullName != nil {
		set["fullName"] = *update.FullName
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}

	var doc userDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("failed to update profile", err)
	}
	return doc.toModel(), nil
}

func (r *MongoUserRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"username": pattern},
		bson.M{"fullName": pattern},
	}}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "username", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *MongoUserRepository) Suggested(ctx context.Context, userID string, limit int) ([]models.User, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	exclude := append(objectIDs(user.Following), newObjectID(user.ID))
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"_id": bson.M{"$nin": exclude}}, opts)
}

// AddFollow writes the actor side first, conditioned on the edge being
// absent, then the target side. A failed second step is compensated.
func (r *MongoUserRepository) AddFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	follower, err := objectID(followerID, "User")
	if err != nil {
		return false, err
	}
	following, err := objectID(followingID, "User")
	if err != nil {
		return false, err
	}

	unlock, err := r.locker.Lock(ctx, followerID, followingID)
	if err != nil {
		return false, apperrors.Internal("failed to lock follow pair", err)
	}
	defer unlock()

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": follower, "following": bson.M{"$ne": following}},
		bson.M{"$addToSet": bson.M{"following": following}})
	if err != nil {
		return false, apperrors.Internal("failed to follow user", err)
	}
	if res.ModifiedCount == 0 {
		return false, nil
	}

	res, err = r.users.UpdateOne(ctx,
		bson.M{"_id": following},
		bson.M{"$addToSet": bson.M{"followers": follower}})
	if err == nil && res.MatchedCount == 0 {
		err = apperrors.NotFound("User not found")
	}
	if err != nil {
		r.compensate(follower, bson.M{"$pull": bson.M{"following": following}})
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return false, err
		}
		return false, apperrors.Internal("failed to follow user", err)
	}
	return true, nil
}

// RemoveFollow mirrors AddFollow with $pull.
func (r *MongoUserRepository) RemoveFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	follower, err := objectID(followerID, "User")
	if err != nil {
		return false, err
	}
	following, err := objectID(followingID, "User")
	if err != nil {
		return false, err
	}

	unlock, err := r.locker.Lock(ctx, followerID, followingID)
	if err != nil {
		return false, apperrors.Internal("failed to lock follow pair", err)
	}
	defer unlock()

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": follower, "following": following},
		bson.M{"$pull": bson.M{"following": following}})
	if err != nil {
		return false, apperrors.Internal("failed to unfollow user", err)
	}
	if res.ModifiedCount == 0 {
		return false, nil
	}

	if _, err := r.users.UpdateOne(ctx,
		bson.M{"_id": following},
		bson.M{"$pull": bson.M{"followers": follower}}); err != nil {
		r.compensate(follower, bson.M{"$addToSet": bson.M{"following": following}})
		return false, apperrors.Internal("failed to unfollow user", err)
	}
	return true, nil
}

// compensate undoes the first saga step. It runs on its own context since
// the request context may be the reason the second step failed.
func (r *MongoUserRepository) compensate(userID primitive.ObjectID, update bson.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		logger.Named("repositories").Error("follow compensation failed",
			zap.String("user_id", userID.Hex()), zap.Error(err))
	}
}

func (r *MongoUserRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	follower, err := objectID(followerID, "User")
	if err != nil {
		return false, err
	}
	following, err := objectID(followingID, "User")
	if err != nil {
		return false, err
	}
	count, err := r.users.CountDocuments(ctx, bson.M{"_id": follower, "following": following})
	if err != nil {
		return false, apperrors.Internal("failed to check follow", err)
	}
	return count > 0, nil
}

func (r *MongoUserRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Following, nil
}
