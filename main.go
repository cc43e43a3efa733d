// main.go
package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"mediahub/database"
	"mediahub/handlers"
	"mediahub/handlers/admin"
	"mediahub/middleware"
	"mediahub/realtime"
	"mediahub/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	appLog := logrus.New()
	if os.Getenv("APP_ENV") == "production" {
		appLog.SetFormatter(&logrus.JSONFormatter{})
	}

	// Initialize database
	database.InitDB()
	defer database.CloseDB()

	// Wire the gamification/notification core against the realtime hub.
	hub := realtime.NewHub(appLog)
	svc := services.New(database.GetDB(), hub, appLog)
	handlers.Init(svc, hub)
	admin.Init(svc)

	// Notification retention sweeper
	sweeper := services.NewRetentionSweeper(database.GetDB(), appLog)
	sweeper.Start()
	defer sweeper.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)

	// Catalog routes (public)
	api.Get("/movies", handlers.GetMovies)
	api.Get("/movies/:id", handlers.GetMovie)
	api.Get("/comics", handlers.GetComics)
	api.Get("/comics/:id", handlers.GetComic)
	api.Get("/comments", handlers.GetComments)

	// Stats routes
	api.Get("/stats/online", handlers.GetOnlineUsersCount)

	// Leaderboard routes
	api.Get("/leaderboard", handlers.GetLeaderboard)
	api.Get("/leaderboard/user/:id", handlers.GetUserRank)

	// User routes (require authentication)
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me", handlers.GetCurrentUser)

	// Gamification routes
	gameGroup := api.Group("/gamification")
	gameGroup.Use(middleware.AuthMiddleware)
	gameGroup.Post("/checkin", handlers.CheckIn)
	gameGroup.Get("/progression", handlers.GetProgression)
	gameGroup.Get("/badges", handlers.GetUserBadges)

	// Notification routes
	notificationGroup := api.Group("/notifications")
	notificationGroup.Use(middleware.AuthMiddleware)
	notificationGroup.Get("/", handlers.GetNotifications)
	notificationGroup.Get("/unread-count", handlers.GetUnreadCount)
	notificationGroup.Put("/read-all", handlers.MarkAllNotificationsRead)
	notificationGroup.Put("/:id/read", handlers.MarkNotificationRead)
	notificationGroup.Delete("/:id", handlers.DeleteNotification)

	// Comment / rating / report routes
	commentGroup := api.Group("/comments")
	commentGroup.Use(middleware.AuthMiddleware)
	commentGroup.Post("/", handlers.CreateComment)
	commentGroup.Delete("/:id", handlers.DeleteComment)

	ratingGroup := api.Group("/ratings")
	ratingGroup.Use(middleware.AuthMiddleware)
	ratingGroup.Post("/", handlers.RateContent)

	reportGroup := api.Group("/reports")
	reportGroup.Use(middleware.AuthMiddleware)
	reportGroup.Post("/", handlers.CreateReport)
	reportGroup.Get("/", handlers.GetMyReports)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)

	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/users", admin.GetUsers)
	adminProtected.Get("/users/:id", admin.GetUser)
	adminProtected.Post("/users/:id/ban", admin.BanUser)
	adminProtected.Post("/users/:id/points", admin.GrantPoints)
	adminProtected.Post("/broadcast", admin.Broadcast)
	adminProtected.Get("/reports", admin.GetReports)
	adminProtected.Put("/reports/:id/status", admin.UpdateReportStatus)

	// Admin badge catalog management
	adminProtected.Get("/badges", admin.GetBadges)
	adminProtected.Post("/badges", admin.CreateBadge)
	adminProtected.Put("/badges/:id", admin.UpdateBadge)
	adminProtected.Delete("/badges/:id", admin.DeleteBadge)

	// Real-time channel: one room per authenticated user
	app.Get("/ws", realtime.UpgradeMiddleware, websocket.New(hub.Handler()))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("HTTP server starting on port %s", port)
	log.Printf("Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("WebSocket available at ws://localhost:%s/ws", port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("APP_ENV") == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
