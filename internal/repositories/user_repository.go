package repositories

import (
	"context"

	"wavvly/internal/models"
)

// UserRepository defines the interface for user and follow-graph data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetManyByIDs returns the users that exist among ids, in no particular order.
	GetManyByIDs(ctx context.Context, ids []string) ([]models.User, error)
	FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	// Suggested returns users that userID neither is nor follows.
	Suggested(ctx context.Context, userID string, limit int) ([]models.User, error)

	// AddFollow creates the edge follower -> following on both sides at once.
	// It reports false when the edge already existed.
	AddFollow(ctx context.Context, followerID, followingID string) (bool, error)
	// RemoveFollow deletes the edge on both sides at once. It reports false
	// when there was no edge.
	RemoveFollow(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}
