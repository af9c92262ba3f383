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

type hashtagRow struct {
	Tag   string `bson:"_id"`
	Count int64  `bson:"count"`
}

// MongoPostRepository embeds likes and comments in the post document and
// mutates them with conditional $push/$pull, never read-modify-write.
type MongoPostRepository struct {
	posts *mongo.Collection
}

func NewMongoPostRepository(database *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{posts: database.Collection(postsCollection)}
}

func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	author, err := objectID(post.AuthorID, "User")
	if err != nil {
		return err
	}
	now := time.Now()
	post.CreatedAt, post.UpdatedAt = now, now
	doc := postDocument{
		ID:        newObjectID(post.ID),
		Author:    author,
		Content:   post.Content,
		Images:    nonNil(post.Images),
		Hashtags:  nonNil(post.Hashtags),
		Mentions:  objectIDs(post.Mentions),
		Likes:     []likeDocument{},
		Comments:  []commentDocument{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.posts.InsertOne(ctx, doc); err != nil {
		return apperrors.Internal("failed to create post", err)
	}
	post.ID = doc.ID.Hex()
	return nil
}

func (r *MongoPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := objectID(id, "Post")
	if err != nil {
		return nil, err
	}
	var doc postDocument
	if err := r.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Post not found")
		}
		return nil, apperrors.Internal("failed to get post", err)
	}
	return doc.toModel(), nil
}

func (r *MongoPostRepository) UpdateContent(ctx context.Context, post *models.Post) error {
	oid, err := objectID(post.ID, "Post")
	if err != nil {
		return err
	}
	post.UpdatedAt = time.Now()
	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"content":   post.Content,
		"hashtags":  nonNil(post.Hashtags),
		"mentions":  objectIDs(post.Mentions),
		"isEdited":  post.IsEdited,
		"editedAt":  post.EditedAt,
		"updatedAt": post.UpdatedAt,
	}})
	if err != nil {
		return apperrors.Internal("failed to update post", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("Post not found")
	}
	return nil
}

func (r *MongoPostRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, "Post")
	if err != nil {
		return err
	}
	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperrors.Internal("failed to delete post", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("Post not found")
	}
	return nil
}

func (r *MongoPostRepository) Find(ctx context.Context, q PostQuery) ([]models.Post, error) {
	filter := bson.M{}
	if q.AuthorIDs != nil {
		authors := objectIDs(q.AuthorIDs)
		if len(authors) == 0 {
			return []models.Post{}, nil
		}
		filter["author"] = bson.M{"$in": authors}
	}
	if len(q.ExcludeIDs) > 0 {
		filter["_id"] = bson.M{"$nin": objectIDs(q.ExcludeIDs)}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))

	cursor, err := r.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Internal("failed to find posts", err)
	}
	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Internal("failed to decode posts", err)
	}
	return lo.Map(docs, func(d postDocument, _ int) models.Post { return *d.toModel() }), nil
}

func (r *MongoPostRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	author, err := objectID(authorID, "User")
	if err != nil {
		return 0, err
	}
	count, err := r.posts.CountDocuments(ctx, bson.M{"author": author})
	if err != nil {
		return 0, apperrors.Internal("failed to count posts", err)
	}
	return count, nil
}

// AddLike pushes the like only when no like by userID is present.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	post, err := objectID(postID, "Post")
	if err != nil {
		return false, err
	}
	user, err := objectID(userID, "User")
	if err != nil {
		return false, err
	}
	res, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": post, "likes.user": bson.M{"$ne": user}},
		bson.M{"$push": bson.M{"likes": likeDocument{User: user, CreatedAt: time.Now()}}})
	if err != nil {
		return false, apperrors.Internal("failed to like post", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	post, err := objectID(postID, "Post")
	if err != nil {
		return false, err
	}
	user, err := objectID(userID, "User")
	if err != nil {
		return false, err
	}
	res, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": post},
		bson.M{"$pull": bson.M{"likes": bson.M{"user": user}}})
	if err != nil {
		return false, apperrors.Internal("failed to unlike post", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoPostRepository) CountLikes(ctx context.Context, postID string) (int, error) {
	post, err := objectID(postID, "Post")
	if err != nil {
		return 0, err
	}
	var out struct {
		Count int `bson:"count"`
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": post}}},
		{{Key: "$project", Value: bson.M{"count": bson.M{"$size": "$likes"}}}},
	}
	cursor, err := r.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, apperrors.Internal("failed to count likes", err)
	}
	defer cursor.Close(ctx)
	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return 0, apperrors.Internal("failed to count likes", err)
		}
		return 0, apperrors.NotFound("Post not found")
	}
	if err := cursor.Decode(&out); err != nil {
		return 0, apperrors.Internal("failed to decode like count", err)
	}
	return out.Count, nil
}

func (r *MongoPostRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	post, err := objectID(postID, "Post")
	if err != nil {
		return err
	}
	user, err := objectID(comment.UserID, "User")
	if err != nil {
		return err
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	doc := commentDocument{ID: newObjectID(comment.ID), User: user, Content: comment.Content, CreatedAt: comment.CreatedAt}
	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": post}, bson.M{"$push": bson.M{"comments": doc}})
	if err != nil {
		return apperrors.Internal("failed to add comment", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("Post not found")
	}
	comment.ID = doc.ID.Hex()
	comment.PostID = postID
	return nil
}

func (r *MongoPostRepository) TrendingHashtags(ctx context.Context, since time.Time, limit int) ([]models.HashtagCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$unwind", Value: "$hashtags"}},
		{{Key: "$group", Value: bson.M{"_id": "$hashtags", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := r.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Internal("failed to aggregate hashtags", err)
	}
	var rows []hashtagRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, apperrors.Internal("failed to decode hashtags", err)
	}
	return lo.Map(rows, func(row hashtagRow, _ int) models.HashtagCount {
		return models.HashtagCount{Tag: row.Tag, Count: row.Count}
	}), nil
}

// EnsureMongoIndexes creates the unique and query indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "hashtags", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "read", Value: 1}}},
		},
	}
	for collection, specs := range indexes {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, specs); err != nil {
			return apperrors.Internal("failed to create indexes on "+collection, err)
		}
	}
	return nil
}
