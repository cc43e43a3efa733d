// handlers/comments.go - Comment routes.
//
// Comment creation is one of the triggers feeding the gamification core:
// it fires the new_comment badge event and, for replies, a notification to
// the parent comment's author.
package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"mediahub/middleware"
	"mediahub/models"
	"mediahub/services"
)

type CreateCommentRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=movie comic"`
	TargetID   uint   `json:"target_id" validate:"required"`
	ParentID   *uint  `json:"parent_id"`
	Content    string `json:"content" validate:"required,min=1,max=4000"`
}

// CreateComment posts a comment or reply on a movie or comic.
func CreateComment(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	db := svc.DB()

	var parent models.Comment
	if req.ParentID != nil {
		if err := db.First(&parent, *req.ParentID).Error; err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "Parent comment not found"})
		}
	}

	comment := models.Comment{
		UserID:     userID,
		ParentID:   req.ParentID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Content:    req.Content,
	}
	if err := db.Create(&comment).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create comment"})
	}

	newBadges, err := svc.CheckAndAwardBadges(c.Context(), userID, services.BadgeEvent{
		Type: models.BadgeEventNewComment,
	})
	if err != nil {
		// The comment exists; badge evaluation failing is not the
		// commenter's problem.
		newBadges = []models.Badge{}
	}

	// Notify the parent author about the reply, unless they reply to
	// themselves.
	if req.ParentID != nil && parent.UserID != userID {
		var author models.User
		if err := db.First(&author, userID).Error; err == nil {
			svc.CreateAndEmitNotification(c.Context(), services.NotificationInput{
				RecipientID: parent.UserID,
				SenderID:    &userID,
				Type:        models.NotificationCommentReply,
				Message:     fmt.Sprintf("%s replied to your comment", author.Username),
				Link:        fmt.Sprintf("/%s/%d#comment-%d", req.TargetType, req.TargetID, comment.ID),
			})
		}
	}

	return c.Status(201).JSON(fiber.Map{
		"success":    true,
		"comment":    comment,
		"new_badges": newBadges,
	})
}

// GetComments lists comments on one target, newest first.
// GET /api/comments?target_type=movie&target_id=3&limit=50&offset=0
func GetComments(c *fiber.Ctx) error {
	targetType := c.Query("target_type")
	if targetType != models.TargetMovie && targetType != models.TargetComic {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid target type"})
	}
	targetID, err := strconv.ParseUint(c.Query("target_id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid target id"})
	}

	limit := clampInt(c.QueryInt("limit", 50), 1, 200)
	offset := maxInt(c.QueryInt("offset", 0), 0)

	db := svc.DB()

	var comments []models.Comment
	if err := db.Preload("User").
		Where("target_type = ? AND target_id = ?", targetType, uint(targetID)).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&comments).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch comments"})
	}

	for i := range comments {
		if comments[i].User != nil {
			comments[i].User.Password = ""
			comments[i].User.Email = nil
		}
	}

	var total int64
	db.Model(&models.Comment{}).
		Where("target_type = ? AND target_id = ?", targetType, uint(targetID)).
		Count(&total)

	return c.JSON(fiber.Map{
		"success":  true,
		"comments": comments,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// DeleteComment removes the user's own comment.
func DeleteComment(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid comment id"})
	}

	res := svc.DB().Where("id = ? AND user_id = ?", uint(id), userID).Delete(&models.Comment{})
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete comment"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Comment not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}
