package services

import (
	"context"

	"wavvly/internal/models"
	"wavvly/internal/repositories"

	"github.com/samber/lo"
)

type summaryIndex map[string]models.UserSummary

// get falls back to a bare summary for users that no longer exist.
func (idx summaryIndex) get(id string) models.UserSummary {
	if summary, ok := idx[id]; ok {
		return summary
	}
	return models.UserSummary{ID: id}
}

// summaries resolves many users with one store query.
func summaries(ctx context.Context, users repositories.UserRepository, ids []string) (summaryIndex, error) {
	found, err := users.GetManyByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, err
	}
	return lo.Associate(found, func(u models.User) (string, models.UserSummary) {
		return u.ID, u.Summary()
	}), nil
}

func postView(post *models.Post, author models.UserSummary, viewerID string) models.PostView {
	var image *string
	if len(post.Images) > 0 {
		first := post.Images[0]
		image = &first
	}
	return models.PostView{
		ID:        post.ID,
		Author:    author,
		Content:   post.Content,
		Image:     image,
		Images:    lo.Ternary(post.Images == nil, []string{}, post.Images),
		Hashtags:  lo.Ternary(post.Hashtags == nil, []string{}, post.Hashtags),
		Likes:     len(post.Likes),
		Comments:  len(post.Comments),
		IsLiked:   post.LikedBy(viewerID),
		IsEdited:  post.IsEdited,
		CreatedAt: post.CreatedAt,
	}
}

// postViews renders posts for viewerID, resolving every author in one query.
func postViews(ctx context.Context, users repositories.UserRepository, posts []models.Post, viewerID string) ([]models.PostView, error) {
	authors, err := summaries(ctx, users, lo.Map(posts, func(p models.Post, _ int) string { return p.AuthorID }))
	if err != nil {
		return nil, err
	}
	return lo.Map(posts, func(p models.Post, _ int) models.PostView {
		return postView(&p, authors.get(p.AuthorID), viewerID)
	}), nil
}
