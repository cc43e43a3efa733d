// services/retention.go - Notification retention sweeper.
//
// Unread notifications are never touched; only rows the recipient has
// already read age out. A retention of 0 disables the sweeper entirely.
package services

import (
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mediahub/models"
)

// RetentionSweeper prunes old read notifications on a nightly schedule.
type RetentionSweeper struct {
	db   *gorm.DB
	log  *logrus.Logger
	days int
	cron *cron.Cron

	Now func() time.Time
}

// NewRetentionSweeper reads NOTIFICATION_RETENTION_DAYS from the
// environment (default 90, 0 disables).
func NewRetentionSweeper(db *gorm.DB, log *logrus.Logger) *RetentionSweeper {
	days := 90
	if v := os.Getenv("NOTIFICATION_RETENTION_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			days = parsed
		} else {
			log.WithField("value", v).Warn("Invalid NOTIFICATION_RETENTION_DAYS, using default")
		}
	}
	return &RetentionSweeper{
		db:   db,
		log:  log,
		days: days,
		cron: cron.New(),
		Now:  time.Now,
	}
}

// Start schedules the nightly sweep. No-op when retention is disabled.
func (s *RetentionSweeper) Start() {
	if s.days == 0 {
		s.log.Info("Notification retention disabled")
		return
	}
	s.cron.AddFunc("0 3 * * *", func() {
		if _, err := s.Sweep(); err != nil {
			s.log.WithError(err).Error("Notification retention sweep failed")
		}
	})
	s.cron.Start()
	s.log.WithField("retention_days", s.days).Info("Notification retention sweeper started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *RetentionSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep deletes read notifications older than the retention window and
// returns how many rows went away.
func (s *RetentionSweeper) Sweep() (int64, error) {
	cutoff := s.Now().AddDate(0, 0, -s.days)
	res := s.db.Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		s.log.WithField("deleted", res.RowsAffected).Info("Pruned old read notifications")
	}
	return res.RowsAffected, nil
}
