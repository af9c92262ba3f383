package repositories

import (
	"context"
	"time"

	"wavvly/internal/models"
)

// PostQuery selects posts newest first.
type PostQuery struct {
	AuthorIDs  []string // nil means every author
	ExcludeIDs []string
	Offset     int
	Limit      int
}

// PostRepository defines the interface for post, like and comment data access.
// Like and comment mutations are single store-side operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID loads the post with its likes and comments.
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// UpdateContent persists content, hashtags, mentions and the edit markers.
	UpdateContent(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, q PostQuery) ([]models.Post, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)

	// AddLike reports false when userID had already liked the post.
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	// RemoveLike reports false when userID had not liked the post.
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	CountLikes(ctx context.Context, postID string) (int, error)
	AddComment(ctx context.Context, postID string, comment *models.Comment) error

	TrendingHashtags(ctx context.Context, since time.Time, limit int) ([]models.HashtagCount, error)
}
