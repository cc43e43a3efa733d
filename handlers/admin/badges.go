// handlers/admin/badges.go - Badge catalog management.
package admin

import (
	"github.com/gofiber/fiber/v2"

	"mediahub/models"
)

// GetBadges returns the full badge catalog.
func GetBadges(c *fiber.Ctx) error {
	var badges []models.Badge
	if err := svc.DB().Order("event_type, threshold").Find(&badges).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch badges"})
	}
	return c.JSON(fiber.Map{"success": true, "badges": badges})
}

// CreateBadge adds a catalog entry.
func CreateBadge(c *fiber.Ctx) error {
	var badge models.Badge
	if err := c.BodyParser(&badge); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if badge.Name == "" || badge.EventType == "" || badge.Metric == "" || badge.Threshold <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Name, event type, metric and a positive threshold are required"})
	}

	if err := svc.DB().Create(&badge).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create badge"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "badge": badge})
}

type BadgeRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	EventType    string `json:"event_type"`
	Metric       string `json:"metric"`
	Threshold    int    `json:"threshold"`
	RewardPoints int    `json:"reward_points"`
}

// UpdateBadge edits a catalog entry. The row is resolved from the path; the
// body cannot redirect the write to another id. Already-awarded user badges
// keep pointing at the same row.
func UpdateBadge(c *fiber.Ctx) error {
	var badge models.Badge
	if err := svc.DB().First(&badge, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Badge not found"})
	}

	var req BadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.EventType == "" || req.Metric == "" || req.Threshold <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Name, event type, metric and a positive threshold are required"})
	}

	badge.Name = req.Name
	badge.Description = req.Description
	badge.Icon = req.Icon
	badge.EventType = req.EventType
	badge.Metric = req.Metric
	badge.Threshold = req.Threshold
	badge.RewardPoints = req.RewardPoints

	if err := svc.DB().Save(&badge).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update badge"})
	}

	return c.JSON(fiber.Map{"success": true, "badge": badge})
}

// DeleteBadge removes a catalog entry.
func DeleteBadge(c *fiber.Ctx) error {
	if err := svc.DB().Delete(&models.Badge{}, c.Params("id")).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete badge"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Badge deleted"})
}
