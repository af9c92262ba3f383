package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wavvly/internal/models"
	apperrors "wavvly/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = models.NewID()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("User already exists")
		}
		return apperrors.Internal("failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user with both sides of their follow graph.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

func (r *GORMUserRepository) first(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(fmt.Sprintf("failed to get user %s", arg), err)
	}
	if err := r.loadGraph(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GORMUserRepository) loadGraph(ctx context.Context, user *models.User) error {
	user.Followers = []string{}
	user.Following = []string{}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", user.ID).Order("created_at").Pluck("follower_id", &user.Followers).Error; err != nil {
		return apperrors.Internal("failed to load followers", err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", user.ID).Order("created_at").Pluck("following_id", &user.Following).Error; err != nil {
		return apperrors.Internal("failed to load following", err)
	}
	return nil
}

// GetManyByIDs retrieves the users among ids. Follow sets are not loaded.
func (r *GORMUserRepository) GetManyByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperrors.Internal("failed to get users by IDs", err)
	}
	return users, nil
}

// FindByUsernames retrieves the users whose username is exactly one of usernames.
func (r *GORMUserRepository) FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("username IN ?", usernames).Find(&users).Error; err != nil {
		return nil, apperrors.Internal("failed to get users by usernames", err)
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields of update.
func (r *GORMUserRepository) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error) {
	fields := map[string]interface{}{}
	if update.FullName != nil {
		fields["full_name"] = *update.FullName
	}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.Avatar != nil {
		fields["avatar"] = *update.Avatar
	}
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, apperrors.Internal("failed to update profile", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperrors.NotFound("User not found")
		}
	}
	return r.GetByID(ctx, id)
}

// Search matches query case-insensitively against username and full name.
func (r *GORMUserRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var users []models.User
	err := r.db.WithContext(ctx).
		Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(full_name) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("username").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Internal("failed to search users", err)
	}
	return users, nil
}

// Suggested returns the newest users that userID does not follow.
func (r *GORMUserRepository) Suggested(ctx context.Context, userID string, limit int) ([]models.User, error) {
	followed := r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", userID).
		Where("id NOT IN (?)", followed).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Internal("failed to get suggested users", err)
	}
	return users, nil
}

// AddFollow inserts the follow row. Both sides of the relation are read from
// this single row, so the insert is the whole mutation.
func (r *GORMUserRepository) AddFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FollowingID: followingID})
	if res.Error != nil {
		return false, apperrors.Internal("failed to follow user", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// RemoveFollow deletes the follow row.
func (r *GORMUserRepository) RemoveFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, apperrors.Internal("failed to unfollow user", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMUserRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Internal("failed to check follow", err)
	}
	return count > 0, nil
}

func (r *GORMUserRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, apperrors.Internal("failed to list followed users", err)
	}
	return ids, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
