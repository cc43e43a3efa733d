// services/service.go - Gamification and notification core.
//
// Every caller that wants to touch points, streaks, badges or notifications
// goes through this one surface instead of re-deriving the math inline.
package services

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mediahub/models"
)

// Real-time event names pushed to a user's room.
const (
	EventStatsUpdate  = "stats_update"
	EventNotification = "notification"
)

// Publisher delivers an event to every live connection of one user.
// Delivery is best-effort: the dispatcher never lets a publish failure
// propagate past a log line.
type Publisher interface {
	PublishToUser(userID uint, event string, payload interface{}) error
}

// NopPublisher is used when no real-time layer is attached.
type NopPublisher struct{}

func (NopPublisher) PublishToUser(uint, string, interface{}) error { return nil }

// Service implements the four core operations: point awarding, daily
// check-in, badge evaluation and notification dispatch.
type Service struct {
	db  *gorm.DB
	pub Publisher
	log *logrus.Logger

	// Now and Location are swappable so tests can pin the calendar.
	Now      func() time.Time
	Location *time.Location
}

// New wires the core against a database and a real-time publisher.
// Pass NopPublisher{} when running without websockets.
func New(db *gorm.DB, pub Publisher, log *logrus.Logger) *Service {
	if pub == nil {
		pub = NopPublisher{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		db:       db,
		pub:      pub,
		log:      log,
		Now:      time.Now,
		Location: checkInLocation(),
	}
}

// DB exposes the underlying handle for plain CRUD in the route layer.
func (s *Service) DB() *gorm.DB {
	return s.db
}

// checkInLocation resolves the timezone used for calendar-day comparisons.
// Defaults to UTC so two servers never disagree on what "today" means.
func checkInLocation() *time.Location {
	name := os.Getenv("CHECKIN_TIMEZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logrus.WithField("timezone", name).Warn("Invalid CHECKIN_TIMEZONE, falling back to UTC")
		return time.UTC
	}
	return loc
}

// emitStats pushes the user's current points/level/streak to their room.
// Fire-and-forget: failures are logged and swallowed.
func (s *Service) emitStats(user *models.User) {
	payload := map[string]interface{}{
		"points":         user.Points,
		"level":          user.Level,
		"current_streak": user.CurrentStreak,
		"best_streak":    user.BestStreak,
	}
	if err := s.pub.PublishToUser(user.ID, EventStatsUpdate, payload); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("Failed to push stats update")
	}
}
