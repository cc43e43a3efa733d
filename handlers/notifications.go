// handlers/notifications.go
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"mediahub/middleware"
)

// GetNotifications lists the user's notifications, newest first.
// GET /api/notifications?limit=20&offset=0&unread=true
func GetNotifications(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	limit := clampInt(c.QueryInt("limit", 20), 1, 100)
	offset := maxInt(c.QueryInt("offset", 0), 0)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := svc.ListNotifications(c.Context(), userID, limit, offset, unreadOnly)
	if err != nil {
		return serviceError(c, err)
	}

	unread, err := svc.UnreadCount(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": notifications,
		"total":         total,
		"unread_count":  unread,
		"limit":         limit,
		"offset":        offset,
	})
}

// GetUnreadCount returns only the unread counter, for badge polling.
func GetUnreadCount(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	unread, err := svc.UnreadCount(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "unread_count": unread})
}

// MarkNotificationRead flips one notification to read.
// PUT /api/notifications/:id/read
func MarkNotificationRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid notification id"})
	}

	if err := svc.MarkRead(c.Context(), userID, uint(id)); err != nil {
		return serviceError(c, err)
	}

	unread, _ := svc.UnreadCount(c.Context(), userID)
	return c.JSON(fiber.Map{"success": true, "unread_count": unread})
}

// MarkAllNotificationsRead flips every unread notification of the user.
func MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	updated, err := svc.MarkAllRead(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "marked_read": updated, "unread_count": 0})
}

// DeleteNotification removes one of the user's notifications.
func DeleteNotification(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid notification id"})
	}

	if err := svc.DeleteNotification(c.Context(), userID, uint(id)); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// helpers
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
