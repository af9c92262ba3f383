package main

import (
	"context"

	"wavvly/internal/models"
	"wavvly/internal/repositories"
	"wavvly/internal/services"
	apperrors "wavvly/pkg/errors"
	"wavvly/pkg/logger"

	"go.uber.org/zap"
)

const seedPassword = "password"

var seedUsers = []models.User{
	{Username: "sarahchen", Email: "sarah@example.com", FullName: "Sarah Chen", Bio: "UI/UX Designer passionate about creating beautiful experiences"},
	{Username: "mikedev", Email: "mike@example.com", FullName: "Mike Johnson", Bio: "Full-stack developer building the future"},
	{Username: "emmaphoto", Email: "emma@example.com", FullName: "Emma Williams", Bio: "Photographer capturing life's beautiful moments"},
	{Username: "alexstartup", Email: "alex@example.com", FullName: "Alex Rodriguez", Bio: "Entrepreneur building the next big thing"},
}

var seedPosts = []struct {
	author  int
	content string
}{
	{0, "Just finished a new design system for our app #design #ui"},
	{1, "Shipped a feature today with zero bugs (so far) #golang #backend"},
	{2, "Golden hour at the beach never disappoints #photography"},
	{3, "Day 100 of building in public. Thanks @mikedev for the help #startup"},
}

// seed creates the demo accounts, follow edges and posts. Accounts that
// already exist are reused, so it can run more than once.
func seed(ctx context.Context, store *repositories.Store) error {
	log := logger.Named("seed")
	auth := services.NewAuthService(store.Users, cfg.JWTSecret, cfg.TokenTTL)
	notifications := services.NewNotificationService(store.Notifications, store.Users, nil)
	graph := services.NewGraphService(store.Users, notifications)
	posts := services.NewPostService(store.Posts, store.Users, notifications)

	ids := make([]string, len(seedUsers))
	for i := range seedUsers {
		user := seedUsers[i]
		user.Password = seedPassword
		if _, err := auth.RegisterUser(ctx, &user); err != nil {
			if !apperrors.IsKind(err, apperrors.KindConflict) {
				return err
			}
			existing, err := store.Users.GetByEmail(ctx, user.Email)
			if err != nil {
				return err
			}
			user = *existing
		}
		ids[i] = user.ID
		log.Info("seeded user", zap.String("username", user.Username), zap.String("id", user.ID))
	}

	// everyone follows the next user round the ring
	for i, id := range ids {
		next := ids[(i+1)%len(ids)]
		if err := graph.Follow(ctx, id, next); err != nil && !apperrors.IsKind(err, apperrors.KindValidation) {
			return err
		}
	}

	for _, p := range seedPosts {
		post, err := posts.CreatePost(ctx, ids[p.author], services.CreatePostInput{Content: p.content})
		if err != nil {
			return err
		}
		log.Info("seeded post", zap.String("id", post.ID))
	}
	return nil
}
