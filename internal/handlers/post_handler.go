package handlers

import (
	"wavvly/internal/middleware"
	"wavvly/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for posts, likes and comments.
type PostHandler struct {
	posts *services.PostService
	feed  *services.FeedService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *services.PostService, feed *services.FeedService) *PostHandler {
	return &PostHandler{posts: posts, feed: feed}
}

// RegisterRoutes registers the post routes with the Fiber app.
func (h *PostHandler) RegisterRoutes(router fiber.Router, requireAuth, optionalAuth fiber.Handler) {
	validID := middleware.ValidObjectID("id")

	postRoutes := router.Group("/posts")
	postRoutes.Get("/", optionalAuth, h.HandleFeed)
	postRoutes.Get("/trending", h.HandleTrending)
	postRoutes.Get("/user/:userId", optionalAuth, middleware.ValidObjectID("userId"), h.HandleUserPosts)
	postRoutes.Get("/:id", optionalAuth, validID, h.HandleGetPost)
	postRoutes.Post("/", requireAuth, h.HandleCreatePost)
	postRoutes.Put("/:id", requireAuth, validID, h.HandleEditPost)
	postRoutes.Delete("/:id", requireAuth, validID, h.HandleDeletePost)
	postRoutes.Post("/:id/like", requireAuth, validID, h.HandleToggleLike)
	postRoutes.Put("/:id/like", requireAuth, validID, h.HandleSetLike)
	postRoutes.Post("/:id/comment", requireAuth, validID, h.HandleAddComment)
}

// HandleFeed returns the viewer's feed, or the newest posts when anonymous.
func (h *PostHandler) HandleFeed(c *fiber.Ctx) error {
	page, limit, err := pagination(c)
	if err != nil {
		return err
	}
	feed, err := h.feed.GetFeed(c.UserContext(), middleware.UserID(c), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(feed)
}

func (h *PostHandler) HandleTrending(c *fiber.Ctx) error {
	hashtags, err := h.feed.TrendingHashtags(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"hashtags": hashtags})
}

func (h *PostHandler) HandleUserPosts(c *fiber.Ctx) error {
	page, limit, err := pagination(c)
	if err != nil {
		return err
	}
	posts, err := h.feed.UserPosts(c.UserContext(), middleware.UserID(c), c.Params("userId"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

func (h *PostHandler) HandleGetPost(c *fiber.Ctx) error {
	post, err := h.posts.GetPost(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"post": post})
}

// CreatePostRequest represents the request body for a new post.
type CreatePostRequest struct {
	Content string   `json:"content" validate:"required"`
	Images  []string `json:"images" validate:"omitempty,max=5"`
}

// HandleCreatePost creates a post authored by the caller.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	post, err := h.posts.CreatePost(c.UserContext(), middleware.UserID(c), services.CreatePostInput{
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ContentRequest carries the text of an edited post or a new comment.
type ContentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *PostHandler) HandleEditPost(c *fiber.Ctx) error {
	var req ContentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	post, err := h.posts.EditPost(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Post updated successfully",
		"post":    post,
	})
}

func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	if err := h.posts.DeletePost(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// HandleToggleLike likes the post if the caller has not, unlikes it otherwise.
func (h *PostHandler) HandleToggleLike(c *fiber.Ctx) error {
	state, err := h.posts.ToggleLike(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(state)
}

// SetLikeRequest represents the desired like state.
type SetLikeRequest struct {
	Liked *bool `json:"liked" validate:"required"`
}

// HandleSetLike sets the caller's like to the requested state.
func (h *PostHandler) HandleSetLike(c *fiber.Ctx) error {
	var req SetLikeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	state, err := h.posts.SetLike(c.UserContext(), middleware.UserID(c), c.Params("id"), *req.Liked)
	if err != nil {
		return err
	}
	return c.JSON(state)
}

func (h *PostHandler) HandleAddComment(c *fiber.Ctx) error {
	var req ContentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.posts.AddComment(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment added successfully",
		"comment": comment,
	})
}
