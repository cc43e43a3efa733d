// services/checkin.go - Daily check-in and streak tracking.
//
// Streak decisions compare calendar dates, not timestamps: checking in at
// 23:59 and again at 00:01 the next day continues the streak.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mediahub/models"
)

// DailyCheckInReward is the fixed point grant for a successful check-in.
const DailyCheckInReward = 15

type CheckInReason string

const (
	ReasonAlreadyCheckedIn CheckInReason = "ALREADY_CHECKED_IN"
	ReasonStreakContinued  CheckInReason = "STREAK_CONTINUED"
	ReasonStreakStarted    CheckInReason = "STREAK_STARTED"
)

// CheckInDecision is the outcome of the pure streak state machine.
type CheckInDecision struct {
	Accepted  bool
	NewStreak int
	Reason    CheckInReason
}

// startOfDay truncates t to midnight in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// daysBetween counts whole calendar days from a to b as seen in loc. The
// dates are re-anchored in UTC before subtracting so a 23- or 25-hour DST
// day still counts as exactly one day.
func daysBetween(a, b time.Time, loc *time.Location) int {
	a, b = a.In(loc), b.In(loc)
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// EvaluateCheckIn decides between the three streak transitions:
// same calendar day (rejected), consecutive day (streak+1), and
// gap of two or more days or first-ever check-in (streak reset to 1).
func EvaluateCheckIn(now time.Time, lastCheckInAt *time.Time, currentStreak int, loc *time.Location) CheckInDecision {
	if lastCheckInAt == nil {
		return CheckInDecision{Accepted: true, NewStreak: 1, Reason: ReasonStreakStarted}
	}

	switch days := daysBetween(*lastCheckInAt, now, loc); {
	case days <= 0:
		return CheckInDecision{Accepted: false, NewStreak: currentStreak, Reason: ReasonAlreadyCheckedIn}
	case days == 1:
		return CheckInDecision{Accepted: true, NewStreak: currentStreak + 1, Reason: ReasonStreakContinued}
	default:
		return CheckInDecision{Accepted: true, NewStreak: 1, Reason: ReasonStreakStarted}
	}
}

// CheckInResult is what the route layer serializes back to the client.
type CheckInResult struct {
	Accepted      bool           `json:"accepted"`
	Reason        CheckInReason  `json:"reason"`
	Streak        int            `json:"streak"`
	PointsAwarded int            `json:"points_awarded"`
	Points        int            `json:"points"`
	Level         int            `json:"level"`
	LeveledUp     bool           `json:"leveled_up"`
	NewBadges     []models.Badge `json:"new_badges"`
}

// CheckIn runs the daily check-in for one user in a single transaction:
// streak decision, point award, badge evaluation and the daily-reward
// notification commit or roll back together. The already-checked-in guard is
// re-applied as a conditional UPDATE so two concurrent requests cannot both
// claim the bonus; the loser sees zero affected rows.
func (s *Service) CheckIn(ctx context.Context, userID uint) (*CheckInResult, error) {
	now := s.Now()

	var user models.User
	var result *CheckInResult
	var pendingNotes []*models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		decision := EvaluateCheckIn(now, user.LastCheckInAt, user.CurrentStreak, s.Location)
		if !decision.Accepted {
			result = &CheckInResult{
				Accepted:  false,
				Reason:    decision.Reason,
				Streak:    user.CurrentStreak,
				Points:    user.Points,
				Level:     user.Level,
				NewBadges: []models.Badge{},
			}
			return nil
		}

		oldLevel := LevelForPoints(user.Points)
		newPoints := user.Points + DailyCheckInReward
		newLevel := LevelForPoints(newPoints)
		bestStreak := user.BestStreak
		if decision.NewStreak > bestStreak {
			bestStreak = decision.NewStreak
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND (last_check_in_at IS NULL OR last_check_in_at < ?)",
				userID, startOfDay(now, s.Location)).
			Updates(map[string]interface{}{
				"last_check_in_at": now,
				"current_streak":   decision.NewStreak,
				"best_streak":      bestStreak,
				"points":           newPoints,
				"level":            newLevel,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent request won the race for today.
			result = &CheckInResult{
				Accepted:  false,
				Reason:    ReasonAlreadyCheckedIn,
				Streak:    user.CurrentStreak,
				Points:    user.Points,
				Level:     user.Level,
				NewBadges: []models.Badge{},
			}
			return nil
		}

		user.LastCheckInAt = &now
		user.CurrentStreak = decision.NewStreak
		user.BestStreak = bestStreak
		user.Points = newPoints
		user.Level = newLevel

		newBadges, notes, err := s.checkAndAwardBadges(tx, &user, BadgeEvent{
			Type:   models.BadgeEventDailyCheckIn,
			Streak: decision.NewStreak,
		})
		if err != nil {
			return err
		}

		note, err := s.createNotification(tx, NotificationInput{
			RecipientID: user.ID,
			Type:        models.NotificationDailyReward,
			Message:     fmt.Sprintf("Daily check-in: +%d points. Streak: %d days.", DailyCheckInReward, decision.NewStreak),
			Link:        "/profile",
		})
		if err != nil {
			return err
		}
		pendingNotes = append(notes, note)

		result = &CheckInResult{
			Accepted:      true,
			Reason:        decision.Reason,
			Streak:        decision.NewStreak,
			PointsAwarded: DailyCheckInReward,
			Points:        user.Points,
			Level:         user.Level,
			LeveledUp:     user.Level > oldLevel,
			NewBadges:     newBadges,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Accepted {
		s.emitStats(&user)
		for _, n := range pendingNotes {
			s.emitNotification(n)
		}
	}
	return result, nil
}
