package handlers

import (
	"wavvly/internal/middleware"
	"wavvly/internal/models"
	"wavvly/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for profiles and the follow graph.
type UserHandler struct {
	users *services.UserService
	graph *services.GraphService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, graph *services.GraphService) *UserHandler {
	return &UserHandler{users: users, graph: graph}
}

// RegisterRoutes registers the user routes. Fixed paths come before /:id.
func (h *UserHandler) RegisterRoutes(router fiber.Router, requireAuth, optionalAuth fiber.Handler) {
	validID := middleware.ValidObjectID("id")

	userRoutes := router.Group("/users")
	userRoutes.Get("/suggested", requireAuth, h.HandleSuggested)
	userRoutes.Get("/search", h.HandleSearch)
	userRoutes.Get("/search/:query", h.HandleSearch)
	userRoutes.Get("/username/:username", optionalAuth, h.HandleGetByUsername)
	userRoutes.Put("/profile", requireAuth, h.HandleUpdateProfile)
	userRoutes.Get("/:id", optionalAuth, validID, h.HandleGetUser)
	userRoutes.Post("/:id/follow", requireAuth, validID, h.HandleFollow)
	userRoutes.Post("/:id/unfollow", requireAuth, validID, h.HandleUnfollow)
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	profile, err := h.users.GetProfile(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": profile})
}

func (h *UserHandler) HandleGetByUsername(c *fiber.Ctx) error {
	profile, err := h.users.GetProfileByUsername(c.UserContext(), middleware.UserID(c), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": profile})
}

// HandleUpdateProfile applies a partial edit to the caller's profile.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req models.ProfileUpdate
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.users.UpdateProfile(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    profile,
	})
}

func (h *UserHandler) HandleFollow(c *fiber.Ctx) error {
	if err := h.graph.Follow(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User followed successfully"})
}

func (h *UserHandler) HandleUnfollow(c *fiber.Ctx) error {
	if err := h.graph.Unfollow(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User unfollowed successfully"})
}

func (h *UserHandler) HandleSuggested(c *fiber.Ctx) error {
	users, err := h.users.Suggested(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}

// HandleSearch accepts the query as ?q= or as a path segment.
func (h *UserHandler) HandleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		query = c.Params("query")
	}
	users, err := h.users.Search(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}
