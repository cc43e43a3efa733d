// handlers/content.go - Movie and comic catalog routes, ratings, reports.
package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"

	"mediahub/middleware"
	"mediahub/models"
	"mediahub/services"
)

// GetMovies lists published movies.
// GET /api/movies?limit=20&offset=0&q=title
func GetMovies(c *fiber.Ctx) error {
	limit := clampInt(c.QueryInt("limit", 20), 1, 100)
	offset := maxInt(c.QueryInt("offset", 0), 0)

	db := svc.DB()
	q := db.Model(&models.Movie{}).Where("is_published = ?", true)
	if search := c.Query("q"); search != "" {
		q = q.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	q.Count(&total)

	var movies []models.Movie
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&movies).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch movies"})
	}

	return c.JSON(fiber.Map{"success": true, "movies": movies, "total": total, "limit": limit, "offset": offset})
}

// GetMovie returns one movie with its episodes.
func GetMovie(c *fiber.Ctx) error {
	var movie models.Movie
	if err := svc.DB().Preload("Episodes").First(&movie, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Movie not found"})
	}

	svc.DB().Model(&movie).UpdateColumn("view_count", movie.ViewCount+1)

	return c.JSON(fiber.Map{"success": true, "movie": movie})
}

// GetComics lists published comics.
func GetComics(c *fiber.Ctx) error {
	limit := clampInt(c.QueryInt("limit", 20), 1, 100)
	offset := maxInt(c.QueryInt("offset", 0), 0)

	db := svc.DB()
	q := db.Model(&models.Comic{}).Where("is_published = ?", true)
	if search := c.Query("q"); search != "" {
		q = q.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	q.Count(&total)

	var comics []models.Comic
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&comics).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch comics"})
	}

	return c.JSON(fiber.Map{"success": true, "comics": comics, "total": total, "limit": limit, "offset": offset})
}

// GetComic returns one comic with its chapters.
func GetComic(c *fiber.Ctx) error {
	var comic models.Comic
	if err := svc.DB().Preload("Chapters").First(&comic, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Comic not found"})
	}

	svc.DB().Model(&comic).UpdateColumn("view_count", comic.ViewCount+1)

	return c.JSON(fiber.Map{"success": true, "comic": comic})
}

type RateRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=movie comic"`
	TargetID   uint   `json:"target_id" validate:"required"`
	Score      int    `json:"score" validate:"required,min=1,max=10"`
}

// RateContent creates or updates the user's rating for one title and runs
// the new_rating badge event.
func RateContent(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req RateRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	rating := models.Rating{
		UserID:     userID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Score:      req.Score,
	}
	if err := svc.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_type"}, {Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(&rating).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save rating"})
	}

	newBadges, err := svc.CheckAndAwardBadges(c.Context(), userID, services.BadgeEvent{
		Type: models.BadgeEventNewRating,
	})
	if err != nil {
		newBadges = []models.Badge{}
	}

	return c.JSON(fiber.Map{"success": true, "rating": rating, "new_badges": newBadges})
}

type CreateReportRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=movie comic"`
	TargetID   uint   `json:"target_id" validate:"required"`
	Reason     string `json:"reason" validate:"required,min=3,max=2000"`
}

// CreateReport files a content report and notifies every admin.
func CreateReport(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateReportRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	report := models.Report{
		ReporterID: userID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
		Status:     models.ReportPending,
	}
	if err := svc.DB().Create(&report).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create report"})
	}

	var adminIDs []uint
	svc.DB().Model(&models.User{}).Where("role = ?", models.RoleAdmin).Pluck("id", &adminIDs)
	for _, adminID := range adminIDs {
		svc.CreateAndEmitNotification(c.Context(), services.NotificationInput{
			RecipientID: adminID,
			SenderID:    &userID,
			Type:        models.NotificationContentReport,
			Message:     fmt.Sprintf("New %s report (#%d): %s", req.TargetType, report.ID, req.Reason),
			Link:        fmt.Sprintf("/admin/reports/%d", report.ID),
		})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "report": report})
}

// GetMyReports lists the reports the user has filed.
func GetMyReports(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var reports []models.Report
	if err := svc.DB().Where("reporter_id = ?", userID).Order("created_at DESC").Find(&reports).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch reports"})
	}

	return c.JSON(fiber.Map{"success": true, "reports": reports})
}
