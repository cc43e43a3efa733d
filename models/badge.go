// models/badge.go
package models

import "time"

// Badge event types the evaluator reacts to.
const (
	BadgeEventDailyCheckIn = "daily_check_in"
	BadgeEventNewComment   = "new_comment"
	BadgeEventNewRating    = "new_rating"
)

// Metrics a badge threshold can be evaluated against.
const (
	MetricStreak        = "streak"
	MetricBestStreak    = "best_streak"
	MetricLevel         = "level"
	MetricPoints        = "points"
	MetricTotalComments = "total_comments"
	MetricTotalRatings  = "total_ratings"
)

// Badge is an immutable catalog entry maintained by administrators.
// A badge fires when the user's Metric value reaches Threshold while
// handling an event of EventType.
type Badge struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;uniqueIndex" json:"name"`
	Description string `gorm:"not null" json:"description"`
	Icon        string `json:"icon"`

	EventType string `gorm:"not null;index" json:"event_type"`
	Metric    string `gorm:"not null" json:"metric"`
	Threshold int    `gorm:"not null" json:"threshold"`

	RewardPoints int `gorm:"default:0" json:"reward_points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Badge) TableName() string {
	return "badges"
}

// UserBadge records a badge held by a user. The composite unique index is
// what makes concurrent award attempts collapse into a single row.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID   uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	AwardedAt time.Time `json:"awarded_at"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
