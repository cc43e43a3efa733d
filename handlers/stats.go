// handlers/stats.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// GetOnlineUsersCount reports how many users currently hold a live
// websocket connection.
func GetOnlineUsersCount(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"online":  hub.OnlineUsers(),
	})
}
