package services

import (
	"context"
	"time"

	"wavvly/internal/metrics"
	"wavvly/internal/models"
	"wavvly/internal/repositories"
	apperrors "wavvly/pkg/errors"
	"wavvly/pkg/logger"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// CreatePostInput carries the user-supplied fields of a new post.
type CreatePostInput struct {
	Content string
	Images  []string
}

// PostService implements post lifecycle, likes and comments.
type PostService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	notifier *NotificationService
	log      *zap.Logger
	now      func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, notifier *NotificationService) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		notifier: notifier,
		log:      logger.Named("posts"),
		now:      time.Now,
	}
}

func validatePostContent(content string) error {
	if !lengthBetween(content, 1, models.MaxPostLength) {
		return apperrors.ValidationFields("Validation failed", map[string]string{
			"content": "Post content must be between 1 and 500 characters",
		})
	}
	return nil
}

// resolveMentions maps @usernames in content to user IDs. Unknown
// usernames are dropped.
func (s *PostService) resolveMentions(ctx context.Context, content string) ([]string, error) {
	names := ExtractMentions(content)
	if len(names) == 0 {
		return []string{}, nil
	}
	found, err := s.users.FindByUsernames(ctx, names)
	if err != nil {
		return nil, err
	}
	byName := lo.Associate(found, func(u models.User) (string, string) { return u.Username, u.ID })
	return lo.FilterMap(names, func(name string, _ int) (string, bool) {
		id, ok := byName[name]
		return id, ok
	}), nil
}

// CreatePost validates and stores a new post by authorID.
func (s *PostService) CreatePost(ctx context.Context, authorID string, input CreatePostInput) (*models.PostView, error) {
	content := SanitizeText(input.Content)
	if err := validatePostContent(content); err != nil {
		return nil, err
	}
	if len(input.Images) > models.MaxPostImages {
		return nil, apperrors.ValidationFields("Validation failed", map[string]string{
			"images": "A post can have at most 5 images",
		})
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	mentions, err := s.resolveMentions(ctx, content)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: authorID,
		Content:  content,
		Images:   lo.Ternary(input.Images == nil, []string{}, input.Images),
		Hashtags: ExtractHashtags(content),
		Mentions: mentions,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	metrics.PostsCreated.Inc()
	s.log.Debug("post created", zap.String("post_id", post.ID), zap.String("author_id", authorID))

	view := postView(post, author.Summary(), authorID)
	return &view, nil
}

// loadOwned returns the post if actorID is its author.
func (s *PostService) loadOwned(ctx context.Context, actorID, postID, action string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, apperrors.NewNotAuthorized("post", postID, action)
	}
	return post, nil
}

// EditPost replaces the content of the actor's post and re-derives its
// hashtags and mentions. The edited flag only ever turns on.
func (s *PostService) EditPost(ctx context.Context, actorID, postID, content string) (*models.PostView, error) {
	content = SanitizeText(content)
	if err := validatePostContent(content); err != nil {
		return nil, err
	}
	post, err := s.loadOwned(ctx, actorID, postID, "edit")
	if err != nil {
		return nil, err
	}
	mentions, err := s.resolveMentions(ctx, content)
	if err != nil {
		return nil, err
	}

	editedAt := s.now()
	post.Content = content
	post.Hashtags = ExtractHashtags(content)
	post.Mentions = mentions
	post.IsEdited = true
	post.EditedAt = &editedAt
	if err := s.posts.UpdateContent(ctx, post); err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	view := postView(post, author.Summary(), actorID)
	return &view, nil
}

// DeletePost removes the actor's post.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID string) error {
	if _, err := s.loadOwned(ctx, actorID, postID, "delete"); err != nil {
		return err
	}
	return s.posts.Delete(ctx, postID)
}

// GetPost returns a post with its comment thread as seen by viewerID.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID string) (*models.PostDetail, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	ids := append([]string{post.AuthorID}, lo.Map(post.Comments, func(c models.Comment, _ int) string { return c.UserID })...)
	people, err := summaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	return &models.PostDetail{
		PostView: postView(post, people.get(post.AuthorID), viewerID),
		CommentList: lo.Map(post.Comments, func(c models.Comment, _ int) models.CommentView {
			return models.CommentView{ID: c.ID, User: people.get(c.UserID), Content: c.Content, CreatedAt: c.CreatedAt}
		}),
	}, nil
}

// ToggleLike removes the actor's like if present, otherwise adds it.
func (s *PostService) ToggleLike(ctx context.Context, actorID, postID string) (*models.LikeState, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	removed, err := s.posts.RemoveLike(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}
	liked := false
	if removed {
		metrics.LikeMutations.WithLabelValues("unlike").Inc()
	} else {
		added, err := s.posts.AddLike(ctx, postID, actorID)
		if err != nil {
			return nil, err
		}
		liked = true
		if added {
			s.onLiked(ctx, post, actorID)
		}
	}
	return s.likeState(ctx, postID, liked)
}

// SetLike moves the actor's like to the requested state. Repeating the
// same request changes nothing.
func (s *PostService) SetLike(ctx context.Context, actorID, postID string, liked bool) (*models.LikeState, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if liked {
		added, err := s.posts.AddLike(ctx, postID, actorID)
		if err != nil {
			return nil, err
		}
		if added {
			s.onLiked(ctx, post, actorID)
		}
	} else {
		removed, err := s.posts.RemoveLike(ctx, postID, actorID)
		if err != nil {
			return nil, err
		}
		if removed {
			metrics.LikeMutations.WithLabelValues("unlike").Inc()
		}
	}
	return s.likeState(ctx, postID, liked)
}

func (s *PostService) onLiked(ctx context.Context, post *models.Post, actorID string) {
	metrics.LikeMutations.WithLabelValues("like").Inc()
	s.notifyAuthor(ctx, post, actorID, models.NotificationLike)
}

func (s *PostService) likeState(ctx context.Context, postID string, liked bool) (*models.LikeState, error) {
	count, err := s.posts.CountLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &models.LikeState{IsLiked: liked, Likes: count}, nil
}

// AddComment appends a comment by actorID and notifies the post author.
func (s *PostService) AddComment(ctx context.Context, actorID, postID, content string) (*models.CommentView, error) {
	content = SanitizeText(content)
	if !lengthBetween(content, 1, models.MaxCommentLength) {
		return nil, apperrors.ValidationFields("Validation failed", map[string]string{
			"content": "Comment must be between 1 and 200 characters",
		})
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{UserID: actorID, Content: content, CreatedAt: s.now()}
	if err := s.posts.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}
	metrics.CommentsCreated.Inc()
	s.notifyAuthor(ctx, post, actorID, models.NotificationComment)

	return &models.CommentView{
		ID:        comment.ID,
		User:      actor.Summary(),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}, nil
}

// notifyAuthor tells the post author about an interaction. A failure here
// does not undo the interaction.
func (s *PostService) notifyAuthor(ctx context.Context, post *models.Post, actorID string, kind models.NotificationType) {
	if post.AuthorID == actorID {
		return
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		s.log.Warn("notification skipped", zap.String("actor_id", actorID), zap.Error(err))
		return
	}
	postID := post.ID
	if _, err := s.notifier.Notify(ctx, post.AuthorID, actor, kind, &postID); err != nil {
		s.log.Warn("failed to create notification",
			zap.String("post_id", post.ID), zap.String("type", string(kind)), zap.Error(err))
	}
}
