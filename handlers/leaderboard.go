// handlers/leaderboard.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mediahub/models"
)

// GetLeaderboard returns the global leaderboard.
// GET /api/leaderboard?category=points&limit=100&offset=0
func GetLeaderboard(c *fiber.Ctx) error {
	category := c.Query("category", "points")
	limit := clampInt(c.QueryInt("limit", 100), 1, 100)
	offset := maxInt(c.QueryInt("offset", 0), 0)

	var orderBy string
	switch category {
	case "points":
		orderBy = "points DESC, level DESC"
	case "level":
		orderBy = "level DESC, points DESC"
	case "streak":
		orderBy = "best_streak DESC, points DESC"
	default:
		category = "points"
		orderBy = "points DESC, level DESC"
	}

	db := svc.DB()
	var users []models.User
	if err := db.Where("is_banned = ?", false).
		Order(orderBy).
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch leaderboard"})
	}

	// Remove sensitive data
	for i := range users {
		users[i].Password = ""
		users[i].Email = nil
	}

	var total int64
	db.Model(&models.User{}).Where("is_banned = ?", false).Count(&total)

	return c.JSON(fiber.Map{
		"success":  true,
		"users":    users,
		"category": category,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetUserRank returns a user's rank for one category.
// GET /api/leaderboard/user/:id?category=points
func GetUserRank(c *fiber.Ctx) error {
	category := c.Query("category", "points")

	db := svc.DB()
	var user models.User
	if err := db.First(&user, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var rank int64
	switch category {
	case "level":
		db.Raw("SELECT COUNT(*) + 1 FROM users WHERE is_banned = false AND (level > ? OR (level = ? AND points > ?))",
			user.Level, user.Level, user.Points).Scan(&rank)
	case "streak":
		db.Raw("SELECT COUNT(*) + 1 FROM users WHERE is_banned = false AND best_streak > ?",
			user.BestStreak).Scan(&rank)
	default:
		category = "points"
		db.Raw("SELECT COUNT(*) + 1 FROM users WHERE is_banned = false AND (points > ? OR (points = ? AND level > ?))",
			user.Points, user.Points, user.Level).Scan(&rank)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"user_id":  user.ID,
		"username": user.Username,
		"rank":     rank,
		"category": category,
	})
}
