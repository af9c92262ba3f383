package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wavvly/internal/models"
	apperrors "wavvly/pkg/errors"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// Create inserts the post and its hashtag index rows in one transaction.
func (r *GORMPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = models.NewID()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		return replaceHashtags(tx, post)
	})
	if err != nil {
		return apperrors.Internal("failed to create post", err)
	}
	return nil
}

func replaceHashtags(tx *gorm.DB, post *models.Post) error {
	if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostHashtag{}).Error; err != nil {
		return err
	}
	if len(post.Hashtags) == 0 {
		return nil
	}
	rows := lo.Map(post.Hashtags, func(tag string, _ int) models.PostHashtag {
		return models.PostHashtag{PostID: post.ID, Tag: tag, CreatedAt: post.CreatedAt}
	})
	return tx.Create(&rows).Error
}

func (r *GORMPostRepository) withEngagement(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") })
}

// GetByID retrieves a post with its likes and comments.
func (r *GORMPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.withEngagement(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Post not found")
		}
		return nil, apperrors.Internal(fmt.Sprintf("failed to get post %s", id), err)
	}
	return &post, nil
}

// UpdateContent writes the editable columns only; likes and comments are
// never rewritten by an edit.
func (r *GORMPostRepository) UpdateContent(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{ID: post.ID}).
			Select("content", "hashtags", "mentions", "is_edited", "edited_at", "updated_at").
			Updates(&models.Post{
				Content:   post.Content,
				Hashtags:  post.Hashtags,
				Mentions:  post.Mentions,
				IsEdited:  post.IsEdited,
				EditedAt:  post.EditedAt,
				UpdatedAt: post.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return replaceHashtags(tx, post)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("Post not found")
	}
	if err != nil {
		return apperrors.Internal("failed to update post", err)
	}
	return nil
}

// Delete removes the post together with its likes, comments and hashtag rows.
func (r *GORMPostRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.Like{}, &models.Comment{}, &models.PostHashtag{}} {
			if err := tx.Where("post_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Post{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("Post not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete post", err)
	}
	return nil
}

// Find returns posts newest first, ties broken by id so paging is stable.
func (r *GORMPostRepository) Find(ctx context.Context, q PostQuery) ([]models.Post, error) {
	if q.AuthorIDs != nil && len(q.AuthorIDs) == 0 {
		return []models.Post{}, nil
	}
	db := r.withEngagement(ctx)
	if q.AuthorIDs != nil {
		db = db.Where("author_id IN ?", q.AuthorIDs)
	}
	if len(q.ExcludeIDs) > 0 {
		db = db.Where("id NOT IN ?", q.ExcludeIDs)
	}
	posts := []models.Post{}
	err := db.Order("created_at DESC").Order("id DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, apperrors.Internal("failed to find posts", err)
	}
	return posts, nil
}

func (r *GORMPostRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		return 0, apperrors.Internal("failed to count posts", err)
	}
	return count, nil
}

// AddLike inserts the like row; the composite key rejects a second like.
func (r *GORMPostRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{PostID: postID, UserID: userID})
	if res.Error != nil {
		return false, apperrors.Internal("failed to like post", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMPostRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, apperrors.Internal("failed to unlike post", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMPostRepository) CountLikes(ctx context.Context, postID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, apperrors.Internal("failed to count likes", err)
	}
	return int(count), nil
}

// AddComment appends a comment row to the post.
func (r *GORMPostRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = models.NewID()
	}
	comment.PostID = postID
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return apperrors.Internal("failed to add comment", err)
	}
	return nil
}

// TrendingHashtags counts hashtags of posts created at or after since.
func (r *GORMPostRepository) TrendingHashtags(ctx context.Context, since time.Time, limit int) ([]models.HashtagCount, error) {
	counts := []models.HashtagCount{}
	err := r.db.WithContext(ctx).Model(&models.PostHashtag{}).
		Select("tag, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("tag").
		Order("count DESC").Order("tag").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, apperrors.Internal("failed to aggregate hashtags", err)
	}
	return counts, nil
}
