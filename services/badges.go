// services/badges.go - Badge rule evaluator.
//
// Badges are declarative catalog rows: event type + metric + threshold.
// The evaluator only ever grants; there is no revocation path.
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mediahub/models"
)

// BadgeEvent describes what just happened to a user. Streak carries the
// post-transition value for daily_check_in events; all other metrics are
// derived from the user row or counted from the store.
type BadgeEvent struct {
	Type   string
	Streak int
}

// metricValue resolves the current value of a badge metric for the user.
func (s *Service) metricValue(tx *gorm.DB, user *models.User, ev BadgeEvent, metric string) (int, error) {
	switch metric {
	case models.MetricStreak:
		if ev.Type == models.BadgeEventDailyCheckIn {
			return ev.Streak, nil
		}
		return user.CurrentStreak, nil
	case models.MetricBestStreak:
		return user.BestStreak, nil
	case models.MetricLevel:
		return user.Level, nil
	case models.MetricPoints:
		return user.Points, nil
	case models.MetricTotalComments:
		var n int64
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", user.ID).Count(&n).Error; err != nil {
			return 0, err
		}
		return int(n), nil
	case models.MetricTotalRatings:
		var n int64
		if err := tx.Model(&models.Rating{}).Where("user_id = ?", user.ID).Count(&n).Error; err != nil {
			return 0, err
		}
		return int(n), nil
	default:
		// Unknown metrics never satisfy; a bad catalog row must not block
		// the whole evaluation.
		s.log.WithField("metric", metric).Warn("Unknown badge metric in catalog")
		return 0, nil
	}
}

// checkAndAwardBadges evaluates the catalog rules for ev.Type inside the
// caller's transaction and returns the badges newly granted plus the
// notification rows created for them (to be emitted after commit).
//
// A rule is newly satisfied only if its threshold predicate holds AND the
// user does not already hold the badge. The insert uses ON CONFLICT DO
// NOTHING on (user_id, badge_id), so a concurrent award of the same badge
// degrades to "already awarded" instead of an error.
func (s *Service) checkAndAwardBadges(tx *gorm.DB, user *models.User, ev BadgeEvent) ([]models.Badge, []*models.Notification, error) {
	var catalog []models.Badge
	if err := tx.Where("event_type = ?", ev.Type).Order("threshold ASC").Find(&catalog).Error; err != nil {
		return nil, nil, fmt.Errorf("loading badge catalog: %w", err)
	}

	newBadges := []models.Badge{}
	var notes []*models.Notification

	if len(catalog) == 0 {
		return newBadges, nil, nil
	}

	var ownedIDs []uint
	if err := tx.Model(&models.UserBadge{}).Where("user_id = ?", user.ID).
		Pluck("badge_id", &ownedIDs).Error; err != nil {
		return nil, nil, err
	}
	owned := make(map[uint]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}

	for _, badge := range catalog {
		if owned[badge.ID] {
			continue
		}

		value, err := s.metricValue(tx, user, ev, badge.Metric)
		if err != nil {
			return nil, nil, err
		}
		if value < badge.Threshold {
			continue
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).Create(&models.UserBadge{
			UserID:    user.ID,
			BadgeID:   badge.ID,
			AwardedAt: s.Now(),
		})
		if res.Error != nil {
			return nil, nil, res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race against a concurrent award. Not ours to report.
			continue
		}

		if badge.RewardPoints > 0 {
			if _, err := s.applyPoints(tx, user, badge.RewardPoints); err != nil {
				return nil, nil, err
			}
		}

		note, err := s.createNotification(tx, NotificationInput{
			RecipientID: user.ID,
			Type:        models.NotificationNewBadge,
			Message:     fmt.Sprintf("New badge unlocked: %s", badge.Name),
			Link:        "/profile/badges",
			IconURL:     badge.Icon,
		})
		if err != nil {
			return nil, nil, err
		}

		newBadges = append(newBadges, badge)
		notes = append(notes, note)
	}

	return newBadges, notes, nil
}

// CheckAndAwardBadges is the standalone evaluator operation: one
// transaction, then best-effort pushes for whatever was granted. Returns the
// newly awarded badges; an empty slice is the normal "nothing new" result.
func (s *Service) CheckAndAwardBadges(ctx context.Context, userID uint, ev BadgeEvent) ([]models.Badge, error) {
	var user models.User
	var newBadges []models.Badge
	var notes []*models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		var err error
		newBadges, notes, err = s.checkAndAwardBadges(tx, &user, ev)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(newBadges) > 0 {
		s.emitStats(&user)
		for _, n := range notes {
			s.emitNotification(n)
		}
	}
	return newBadges, nil
}
