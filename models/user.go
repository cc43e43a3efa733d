// models/user.go
package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"uniqueIndex;not null" json:"username"`
	Email       *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password    string  `gorm:"not null" json:"-"`
	DisplayName string  `json:"display_name"`
	Avatar      string  `json:"avatar"`
	Role        string  `gorm:"default:'user';size:20;index" json:"role"`
	IsBanned    bool    `gorm:"default:false" json:"is_banned"`

	// Gamification state. Level is always derived from Points; it is stored
	// denormalized for cheap leaderboard ordering but only ever written by
	// the points ledger.
	Points        int        `gorm:"default:0" json:"points"`
	Level         int        `gorm:"default:1" json:"level"`
	LastCheckInAt *time.Time `json:"last_check_in_at,omitempty"`
	CurrentStreak int        `gorm:"default:0" json:"current_streak"`
	BestStreak    int        `gorm:"default:0" json:"best_streak"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`

	// Relationships
	Badges []UserBadge `gorm:"foreignKey:UserID" json:"badges,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
