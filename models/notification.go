// models/notification.go
package models

import "time"

// Notification types.
const (
	NotificationSystem        = "system_announcement"
	NotificationCommentReply  = "comment_reply"
	NotificationReportStatus  = "report_status"
	NotificationNewBadge      = "new_badge"
	NotificationDailyReward   = "daily_reward"
	NotificationContentReport = "content_report"
)

var notificationTypes = map[string]bool{
	NotificationSystem:        true,
	NotificationCommentReply:  true,
	NotificationReportStatus:  true,
	NotificationNewBadge:      true,
	NotificationDailyReward:   true,
	NotificationContentReport: true,
}

// ValidNotificationType reports whether t is a supported notification type.
func ValidNotificationType(t string) bool {
	return notificationTypes[t]
}

// Notification is a durable per-recipient message. IsRead only ever flips
// false -> true; there is no way back to unread.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	SenderID    *uint     `json:"sender_id,omitempty"`
	Type        string    `gorm:"not null;size:40" json:"type"`
	Message     string    `gorm:"not null;type:text" json:"message"`
	Link        string    `json:"link"`
	IconURL     string    `json:"icon_url"`
	IsRead      bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
