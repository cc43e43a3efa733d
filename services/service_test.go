// services/service_test.go - Shared test harness.
package services

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mediahub/models"
)

// capturePublisher records every push so tests can assert on emissions.
type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	UserID  uint
	Event   string
	Payload interface{}
}

func (p *capturePublisher) PublishToUser(userID uint, event string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{UserID: userID, Event: event, Payload: payload})
	return nil
}

func (p *capturePublisher) eventsFor(userID uint, event string) []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []capturedEvent
	for _, e := range p.events {
		if e.UserID == userID && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// failingPublisher simulates a dead real-time layer.
type failingPublisher struct{}

func (failingPublisher) PublishToUser(uint, string, interface{}) error {
	return errors.New("connection reset")
}

// Each test gets its own named in-memory database. cache=shared keeps the
// schema alive across the pooled connections gorm opens.
var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Notification{},
		&models.Comment{},
		&models.Rating{},
	)
	require.NoError(t, err)
	return db
}

func newTestService(t *testing.T) (*Service, *capturePublisher) {
	t.Helper()
	pub := &capturePublisher{}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	svc := New(newTestDB(t), pub, log)
	svc.Location = time.UTC
	return svc, pub
}

func createUser(t *testing.T, svc *Service, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Password: "hashed",
		Role:     models.RoleUser,
		Level:    1,
	}
	require.NoError(t, svc.DB().Create(user).Error)
	return user
}

func reloadUser(t *testing.T, svc *Service, id uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, svc.DB().First(&user, id).Error)
	return &user
}

// pinTime freezes the service clock at the given instant.
func pinTime(svc *Service, at time.Time) {
	svc.Now = func() time.Time { return at }
}
