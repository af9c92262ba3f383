package services

import (
	"context"
	"time"

	"wavvly/internal/models"
	"wavvly/internal/repositories"

	"github.com/samber/lo"
)

const (
	trendingWindow = 7 * 24 * time.Hour
	trendingLimit  = 10
)

// FeedService composes pages of posts.
type FeedService struct {
	posts repositories.PostRepository
	users repositories.UserRepository
	now   func() time.Time
}

// NewFeedService creates a new FeedService.
func NewFeedService(posts repositories.PostRepository, users repositories.UserRepository) *FeedService {
	return &FeedService{posts: posts, users: users, now: time.Now}
}

// GetFeed returns page of the viewer's feed. Posts by the viewer and the
// users they follow come first; a short page is topped up with the newest
// posts system-wide that are not already on it. An empty viewerID gets the
// newest posts system-wide.
func (s *FeedService) GetFeed(ctx context.Context, viewerID string, page, limit int) (*models.FeedPage, error) {
	offset := (page - 1) * limit

	var posts []models.Post
	if viewerID == "" {
		var err error
		posts, err = s.posts.Find(ctx, repositories.PostQuery{Offset: offset, Limit: limit})
		if err != nil {
			return nil, err
		}
	} else {
		following, err := s.users.FollowingIDs(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		posts, err = s.posts.Find(ctx, repositories.PostQuery{
			AuthorIDs: append([]string{viewerID}, following...),
			Offset:    offset,
			Limit:     limit,
		})
		if err != nil {
			return nil, err
		}

		if len(posts) < limit {
			backfill, err := s.posts.Find(ctx, repositories.PostQuery{
				ExcludeIDs: lo.Map(posts, func(p models.Post, _ int) string { return p.ID }),
				Limit:      limit - len(posts),
			})
			if err != nil {
				return nil, err
			}
			posts = append(posts, backfill...)
		}
	}

	return s.page(ctx, posts, viewerID, page, limit)
}

// UserPosts returns one author's posts, newest first.
func (s *FeedService) UserPosts(ctx context.Context, viewerID, userID string, page, limit int) (*models.FeedPage, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	posts, err := s.posts.Find(ctx, repositories.PostQuery{
		AuthorIDs: []string{userID},
		Offset:    (page - 1) * limit,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	return s.page(ctx, posts, viewerID, page, limit)
}

func (s *FeedService) page(ctx context.Context, posts []models.Post, viewerID string, page, limit int) (*models.FeedPage, error) {
	views, err := postViews(ctx, s.users, posts, viewerID)
	if err != nil {
		return nil, err
	}
	return &models.FeedPage{
		Posts:       views,
		CurrentPage: page,
		HasMore:     len(views) == limit,
	}, nil
}

// TrendingHashtags returns the most used hashtags of the last seven days.
func (s *FeedService) TrendingHashtags(ctx context.Context) ([]models.HashtagCount, error) {
	return s.posts.TrendingHashtags(ctx, s.now().Add(-trendingWindow), trendingLimit)
}
