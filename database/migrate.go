// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"mediahub/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Notification{},
		&models.Movie{},
		&models.Episode{},
		&models.Comic{},
		&models.Chapter{},
		&models.Comment{},
		&models.Rating{},
		&models.Report{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	createIndexes()
	seedBadges()

	log.Println("Migrations completed")
}

func createIndexes() {
	db := GetDB()

	// Leaderboard ordering
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_points ON users(points DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_level ON users(level DESC)")

	// Unread counter lookups
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(recipient_id, is_read)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at DESC)")
}

// seedBadges installs the default badge catalog on an empty database.
// Administrators extend it at runtime; existing rows are never touched.
func seedBadges() {
	db := GetDB()

	var count int64
	db.Model(&models.Badge{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []models.Badge{
		{Name: "Regular", Description: "Check in 3 days in a row", Icon: "/badges/regular.png",
			EventType: models.BadgeEventDailyCheckIn, Metric: models.MetricStreak, Threshold: 3, RewardPoints: 30},
		{Name: "Devoted", Description: "Check in 7 days in a row", Icon: "/badges/devoted.png",
			EventType: models.BadgeEventDailyCheckIn, Metric: models.MetricStreak, Threshold: 7, RewardPoints: 75},
		{Name: "Iron Will", Description: "Check in 30 days in a row", Icon: "/badges/iron-will.png",
			EventType: models.BadgeEventDailyCheckIn, Metric: models.MetricStreak, Threshold: 30, RewardPoints: 300},
		{Name: "First Words", Description: "Post your first comment", Icon: "/badges/first-words.png",
			EventType: models.BadgeEventNewComment, Metric: models.MetricTotalComments, Threshold: 1},
		{Name: "Conversationalist", Description: "Post 10 comments", Icon: "/badges/conversationalist.png",
			EventType: models.BadgeEventNewComment, Metric: models.MetricTotalComments, Threshold: 10, RewardPoints: 50},
		{Name: "Voice of the Crowd", Description: "Post 50 comments", Icon: "/badges/voice.png",
			EventType: models.BadgeEventNewComment, Metric: models.MetricTotalComments, Threshold: 50, RewardPoints: 200},
		{Name: "Critic", Description: "Rate 10 titles", Icon: "/badges/critic.png",
			EventType: models.BadgeEventNewRating, Metric: models.MetricTotalRatings, Threshold: 10, RewardPoints: 50},
	}

	if err := db.Create(&defaults).Error; err != nil {
		log.Printf("Failed to seed badge catalog: %v", err)
		return
	}
	log.Printf("Seeded %d default badges", len(defaults))
}
