// handlers/admin/users.go - User moderation.
package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"mediahub/middleware"
	"mediahub/models"
)

// GetUsers lists accounts with paging and optional search.
// GET /api/admin/users?limit=50&offset=0&q=name
func GetUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	db := svc.DB()
	q := db.Model(&models.User{})
	if search := c.Query("q"); search != "" {
		q = q.Where("username LIKE ?", "%"+search+"%")
	}

	var total int64
	q.Count(&total)

	var users []models.User
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	for i := range users {
		users[i].Password = ""
	}

	return c.JSON(fiber.Map{"success": true, "users": users, "total": total, "limit": limit, "offset": offset})
}

// GetUser returns one account with its badges.
func GetUser(c *fiber.Ctx) error {
	var user models.User
	if err := svc.DB().Preload("Badges.Badge").First(&user, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	user.Password = ""
	return c.JSON(fiber.Map{"success": true, "user": user})
}

type BanRequest struct {
	Banned bool `json:"banned"`
}

// BanUser sets or clears the ban flag.
func BanUser(c *fiber.Ctx) error {
	var req BanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	res := svc.DB().Model(&models.User{}).Where("id = ?", c.Params("id")).Update("is_banned", req.Banned)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update user"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true, "banned": req.Banned})
}

type GrantPointsRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// GrantPoints awards points to one user through the ledger.
func GrantPoints(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req GrantPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := svc.AwardPoints(c.Context(), uint(userID), req.Amount)
	if err != nil {
		return svcError(c, err)
	}

	adminID, _ := middleware.GetUserID(c)
	return c.JSON(fiber.Map{
		"success":    true,
		"granted_by": adminID,
		"amount":     req.Amount,
		"reason":     req.Reason,
		"points":     result.Points,
		"level":      result.Level,
		"leveled_up": result.LeveledUp,
	})
}
