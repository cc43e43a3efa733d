// services/points.go - Points ledger.
//
// Level is a pure function of the lifetime points total. The thresholds are
// cumulative: crossing levelThresholds[n] puts the user at level n+1.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"mediahub/models"
)

// Cumulative point totals required to reach each level (index 0 = level 1).
var levelThresholds = []int{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000}

// Past the table, every additional block of points is one more level.
const pointsPerLevelBeyondTable = 5000

// LevelForPoints maps a lifetime points total to a level. Monotonic:
// p1 <= p2 implies LevelForPoints(p1) <= LevelForPoints(p2).
func LevelForPoints(points int) int {
	if points < 0 {
		return 1
	}
	level := 1
	for i, threshold := range levelThresholds {
		if points >= threshold {
			level = i + 1
		} else {
			return level
		}
	}
	extra := points - levelThresholds[len(levelThresholds)-1]
	return level + extra/pointsPerLevelBeyondTable
}

// PointsToNextLevel returns how many points are still missing for the next
// level, for progress bars.
func PointsToNextLevel(points int) int {
	level := LevelForPoints(points)
	if level < len(levelThresholds) {
		return levelThresholds[level] - points
	}
	base := levelThresholds[len(levelThresholds)-1]
	next := base + (level-len(levelThresholds)+1)*pointsPerLevelBeyondTable
	return next - points
}

// PointsResult is the outcome of a single award.
type PointsResult struct {
	Points    int  `json:"points"`
	Level     int  `json:"level"`
	LeveledUp bool `json:"leveled_up"`
}

// applyPoints adds delta to the user's lifetime total, recomputes the level
// and persists both inside the caller's transaction. The user struct is
// updated in place so follow-up badge checks see the new totals.
func (s *Service) applyPoints(tx *gorm.DB, user *models.User, delta int) (PointsResult, error) {
	if delta <= 0 {
		return PointsResult{}, ErrInvalidDelta
	}

	oldLevel := LevelForPoints(user.Points)
	user.Points += delta
	user.Level = LevelForPoints(user.Points)

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"points": user.Points,
			"level":  user.Level,
		}).Error; err != nil {
		return PointsResult{}, err
	}

	return PointsResult{
		Points:    user.Points,
		Level:     user.Level,
		LeveledUp: user.Level > oldLevel,
	}, nil
}

// AwardPoints is the standalone ledger operation: one transaction, then a
// best-effort stats push. Used by admin grants; the check-in and badge flows
// call applyPoints inside their own transactions instead.
func (s *Service) AwardPoints(ctx context.Context, userID uint, delta int) (PointsResult, error) {
	if delta <= 0 {
		return PointsResult{}, ErrInvalidDelta
	}

	var user models.User
	var result PointsResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		var err error
		result, err = s.applyPoints(tx, &user, delta)
		return err
	})
	if err != nil {
		return PointsResult{}, err
	}

	s.emitStats(&user)
	return result, nil
}
