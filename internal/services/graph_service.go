package services

import (
	"context"

	"wavvly/internal/metrics"
	"wavvly/internal/models"
	"wavvly/internal/repositories"
	apperrors "wavvly/pkg/errors"
	"wavvly/pkg/logger"

	"go.uber.org/zap"
)

// GraphService maintains follow edges.
type GraphService struct {
	users    repositories.UserRepository
	notifier *NotificationService
	log      *zap.Logger
}

// NewGraphService creates a new GraphService.
func NewGraphService(users repositories.UserRepository, notifier *NotificationService) *GraphService {
	return &GraphService{users: users, notifier: notifier, log: logger.Named("graph")}
}

// Follow makes actorID follow targetID and notifies the target.
func (s *GraphService) Follow(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperrors.NewSelfFollow(actorID)
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}

	created, err := s.users.AddFollow(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !created {
		return apperrors.NewAlreadyFollowing(actorID, targetID)
	}
	metrics.FollowMutations.WithLabelValues("follow").Inc()

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		s.log.Warn("follow notification skipped", zap.String("actor_id", actorID), zap.Error(err))
		return nil
	}
	if _, err := s.notifier.Notify(ctx, targetID, actor, models.NotificationFollow, nil); err != nil {
		s.log.Warn("failed to create follow notification", zap.String("target_id", targetID), zap.Error(err))
	}
	return nil
}

// Unfollow removes the edge actorID -> targetID.
func (s *GraphService) Unfollow(ctx context.Context, actorID, targetID string) error {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	removed, err := s.users.RemoveFollow(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NewNotFollowing(actorID, targetID)
	}
	metrics.FollowMutations.WithLabelValues("unfollow").Inc()
	return nil
}
