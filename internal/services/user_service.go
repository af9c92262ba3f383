package services

import (
	"context"
	"strings"

	"wavvly/internal/models"
	"wavvly/internal/repositories"
	apperrors "wavvly/pkg/errors"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	searchLimit    = 20
	suggestedLimit = 5
	minSearchQuery = 2
)

// UserService serves profiles, profile edits and user discovery.
type UserService struct {
	users repositories.UserRepository
	posts repositories.PostRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, posts repositories.PostRepository) *UserService {
	return &UserService{users: users, posts: posts}
}

// GetProfile loads a user and their post count concurrently.
func (s *UserService) GetProfile(ctx context.Context, viewerID, userID string) (*models.Profile, error) {
	var (
		user      *models.User
		postCount int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.users.GetByID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		postCount, err = s.posts.CountByAuthor(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile(user, postCount, viewerID), nil
}

// GetProfileByUsername resolves username first, then counts posts.
func (s *UserService) GetProfileByUsername(ctx context.Context, viewerID, username string) (*models.Profile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	postCount, err := s.posts.CountByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return profile(user, postCount, viewerID), nil
}

func profile(user *models.User, postCount int64, viewerID string) *models.Profile {
	followers := lo.Ternary(user.Followers == nil, []string{}, user.Followers)
	following := lo.Ternary(user.Following == nil, []string{}, user.Following)
	return &models.Profile{
		ID:             user.ID,
		Username:       user.Username,
		FullName:       user.FullName,
		Bio:            user.Bio,
		Avatar:         user.Avatar,
		IsVerified:     user.IsVerified,
		Followers:      followers,
		Following:      following,
		FollowerCount:  len(followers),
		FollowingCount: len(following),
		PostCount:      postCount,
		IsFollowing:    viewerID != "" && lo.Contains(followers, viewerID),
		JoinDate:       user.CreatedAt,
	}
}

// UpdateProfile applies the actor's profile edit.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, update models.ProfileUpdate) (*models.Profile, error) {
	if update.FullName != nil {
		name := SanitizeText(*update.FullName)
		if !lengthBetween(name, 1, 50) {
			return nil, apperrors.ValidationFields("Validation failed", map[string]string{
				"fullName": "Full name must be between 1 and 50 characters",
			})
		}
		update.FullName = &name
	}
	if update.Bio != nil {
		bio := SanitizeText(*update.Bio)
		if !lengthBetween(bio, 0, 200) {
			return nil, apperrors.ValidationFields("Validation failed", map[string]string{
				"bio": "Bio must be less than 200 characters",
			})
		}
		update.Bio = &bio
	}

	if _, err := s.users.UpdateProfile(ctx, actorID, update); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, actorID, actorID)
}

// Search finds up to 20 users whose username or full name contains query.
func (s *UserService) Search(ctx context.Context, query string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQuery {
		return nil, apperrors.Validation("Search query must be at least 2 characters")
	}
	users, err := s.users.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u models.User, _ int) models.UserSummary { return u.Summary() }), nil
}

// Suggested returns up to five users the actor does not follow yet.
func (s *UserService) Suggested(ctx context.Context, actorID string) ([]models.UserSummary, error) {
	users, err := s.users.Suggested(ctx, actorID, suggestedLimit)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u models.User, _ int) models.UserSummary { return u.Summary() }), nil
}
