package handlers

import (
	"wavvly/internal/middleware"
	"wavvly/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler serves the caller's notifications. Every route requires
// authentication.
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	validID := middleware.ValidObjectID("id")

	notificationRoutes := router.Group("/notifications", requireAuth)
	notificationRoutes.Get("/", h.HandleList)
	notificationRoutes.Get("/unread-count", h.HandleUnreadCount)
	notificationRoutes.Put("/read-all", h.HandleMarkAllRead)
	notificationRoutes.Put("/:id/read", validID, h.HandleMarkRead)
	notificationRoutes.Delete("/:id", validID, h.HandleDelete)
}

func (h *NotificationHandler) HandleList(c *fiber.Ctx) error {
	page, limit, err := pagination(c)
	if err != nil {
		return err
	}
	result, err := h.notifications.List(c.UserContext(), middleware.UserID(c), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *NotificationHandler) HandleUnreadCount(c *fiber.Ctx) error {
	count, err := h.notifications.UnreadCount(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"unreadCount": count})
}

func (h *NotificationHandler) HandleMarkRead(c *fiber.Ctx) error {
	if err := h.notifications.MarkRead(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) HandleMarkAllRead(c *fiber.Ctx) error {
	if _, err := h.notifications.MarkAllRead(c.UserContext(), middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}

func (h *NotificationHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.notifications.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Notification deleted"})
}
