// handlers/handlers_test.go - Route-level tests against an in-memory store.
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mediahub/middleware"
	"mediahub/models"
	"mediahub/services"
)

var testDBSeq atomic.Int64

func setupApp(t *testing.T) (*fiber.App, *services.Service) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-test-secret-test-secret!")

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Badge{}, &models.UserBadge{},
		&models.Notification{}, &models.Movie{}, &models.Comic{},
		&models.Comment{}, &models.Rating{}, &models.Report{},
	))

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	s := services.New(db, services.NopPublisher{}, log)
	Init(s, nil)

	app := fiber.New()
	app.Post("/api/auth/register", Register)
	app.Post("/api/auth/login", Login)

	auth := app.Group("", middleware.AuthMiddleware)
	auth.Get("/api/users/me", GetCurrentUser)
	auth.Post("/api/gamification/checkin", CheckIn)
	auth.Get("/api/gamification/progression", GetProgression)
	auth.Get("/api/gamification/badges", GetUserBadges)
	auth.Get("/api/notifications/", GetNotifications)
	auth.Get("/api/notifications/unread-count", GetUnreadCount)
	auth.Put("/api/notifications/read-all", MarkAllNotificationsRead)

	return app, s
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, 200, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := setupApp(t)

	registerUser(t, app, "alice")

	// Duplicate username is rejected.
	resp, _ := doJSON(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"username": "alice", "password": "secret123",
	})
	assert.Equal(t, 400, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"username": "alice", "password": "secret123",
	})
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, _ = doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, 401, resp.StatusCode)
}

func TestRegisterConcurrentDuplicate(t *testing.T) {
	app, s := setupApp(t)

	// Create the conflicting row only after the availability lookup has
	// run, so the insert is what collides with the unique index.
	raced := false
	err := s.DB().Callback().Query().After("gorm:query").Register("register_race", func(d *gorm.DB) {
		if raced || d.Statement.Table != "users" {
			return
		}
		raced = true
		d.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO users (username, password, role, level) VALUES (?, ?, ?, ?)",
				"mallory", "hashed", "user", 1)
	})
	require.NoError(t, err)

	resp, body := doJSON(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"username": "mallory", "password": "secret123",
	})
	require.True(t, raced)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Username already taken", body["error"])

	var count int64
	require.NoError(t, s.DB().Model(&models.User{}).Where("username = ?", "mallory").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	app, _ := setupApp(t)

	cases := []fiber.Map{
		{"username": "ab", "password": "secret123"},        // too short
		{"username": "has space", "password": "secret123"}, // not alphanum
		{"username": "alice", "password": "123"},           // weak password
		{"username": "alice", "password": "secret123", "email": "not-an-email"},
	}
	for _, payload := range cases {
		resp, _ := doJSON(t, app, "POST", "/api/auth/register", "", payload)
		assert.Equal(t, 400, resp.StatusCode, "payload %v", payload)
	}
}

func TestBannedUserCannotLogin(t *testing.T) {
	app, s := setupApp(t)
	registerUser(t, app, "alice")
	require.NoError(t, s.DB().Model(&models.User{}).
		Where("username = ?", "alice").Update("is_banned", true).Error)

	resp, _ := doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"username": "alice", "password": "secret123",
	})
	assert.Equal(t, 403, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	app, _ := setupApp(t)

	for _, path := range []string{"/api/users/me", "/api/gamification/progression"} {
		resp, _ := doJSON(t, app, "GET", path, "", nil)
		assert.Equal(t, 401, resp.StatusCode, path)
	}

	resp, _ := doJSON(t, app, "GET", "/api/users/me", "not-a-jwt", nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestCheckInFlow(t *testing.T) {
	app, s := setupApp(t)
	token := registerUser(t, app, "alice")

	s.Now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	resp, body := doJSON(t, app, "POST", "/api/gamification/checkin", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["streak"])
	assert.EqualValues(t, services.DailyCheckInReward, body["points_awarded"])

	// Second attempt the same day comes back as a conflict.
	resp, body = doJSON(t, app, "POST", "/api/gamification/checkin", token, nil)
	assert.Equal(t, 409, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, string(services.ReasonAlreadyCheckedIn), body["reason"])

	resp, body = doJSON(t, app, "GET", "/api/gamification/progression", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 15, body["points"])
	assert.EqualValues(t, 1, body["current_streak"])
	assert.EqualValues(t, 85, body["points_to_next_level"])

	// The daily reward notification is waiting.
	resp, body = doJSON(t, app, "GET", "/api/notifications/unread-count", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 1, body["unread_count"])

	resp, body = doJSON(t, app, "PUT", "/api/notifications/read-all", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 1, body["marked_read"])
}

func TestGetUserBadgesAnnotatesCatalog(t *testing.T) {
	app, s := setupApp(t)
	token := registerUser(t, app, "alice")

	require.NoError(t, s.DB().Create(&models.Badge{
		Name: "Regular", Description: "Three days in a row",
		EventType: models.BadgeEventDailyCheckIn, Metric: models.MetricStreak, Threshold: 3,
	}).Error)
	require.NoError(t, s.DB().Create(&models.Badge{
		Name: "First Words", Description: "First comment",
		EventType: models.BadgeEventNewComment, Metric: models.MetricTotalComments, Threshold: 1,
	}).Error)

	var user models.User
	require.NoError(t, s.DB().Where("username = ?", "alice").First(&user).Error)
	require.NoError(t, s.DB().Create(&models.UserBadge{
		UserID: user.ID, BadgeID: 1, AwardedAt: time.Now(),
	}).Error)

	resp, body := doJSON(t, app, "GET", "/api/gamification/badges", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 1, body["unlocked"])

	badges, ok := body["badges"].([]interface{})
	require.True(t, ok)
	require.Len(t, badges, 2)
	first := badges[0].(map[string]interface{})
	assert.Equal(t, true, first["unlocked"])
}
