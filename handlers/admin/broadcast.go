// handlers/admin/broadcast.go - Announcements and report moderation.
package admin

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"mediahub/middleware"
	"mediahub/models"
	"mediahub/services"
)

type BroadcastRequest struct {
	Role    string `json:"role"` // "all", "user", "moderator", "admin"
	Message string `json:"message"`
	Link    string `json:"link"`
}

// Broadcast sends a system announcement to every user matching the role
// filter. Each recipient is an independent insert; the response reports how
// many went out.
func Broadcast(c *fiber.Ctx) error {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Role == "" {
		req.Role = "all"
	}

	sent, err := svc.Broadcast(c.Context(), &adminID, req.Role, req.Message, req.Link)
	if err != nil {
		return svcError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "recipients": sent, "role": req.Role})
}

type ReportStatusRequest struct {
	Status string `json:"status"` // "resolved" or "rejected"
}

// GetReports lists reports, optionally filtered by status.
func GetReports(c *fiber.Ctx) error {
	db := svc.DB()
	q := db.Model(&models.Report{}).Preload("Reporter")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var reports []models.Report
	if err := q.Order("created_at DESC").Limit(200).Find(&reports).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch reports"})
	}

	for i := range reports {
		if reports[i].Reporter != nil {
			reports[i].Reporter.Password = ""
			reports[i].Reporter.Email = nil
		}
	}

	return c.JSON(fiber.Map{"success": true, "reports": reports})
}

// UpdateReportStatus resolves or rejects a report and notifies the
// reporter of the outcome.
func UpdateReportStatus(c *fiber.Ctx) error {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req ReportStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Status != models.ReportResolved && req.Status != models.ReportRejected {
		return c.Status(400).JSON(fiber.Map{"error": "Status must be resolved or rejected"})
	}

	db := svc.DB()
	var report models.Report
	if err := db.First(&report, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Report not found"})
	}

	if err := db.Model(&report).Update("status", req.Status).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update report"})
	}

	svc.CreateAndEmitNotification(c.Context(), services.NotificationInput{
		RecipientID: report.ReporterID,
		SenderID:    &adminID,
		Type:        models.NotificationReportStatus,
		Message:     fmt.Sprintf("Your report #%d was %s", report.ID, req.Status),
		Link:        "/reports",
	})

	return c.JSON(fiber.Map{"success": true, "report": report})
}

// svcError maps core errors to HTTP responses for the admin surface.
func svcError(c *fiber.Ctx, err error) error {
	switch {
	case services.IsValidation(err):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(404).JSON(fiber.Map{"success": false, "error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Something went wrong. Please try again."})
	}
}
