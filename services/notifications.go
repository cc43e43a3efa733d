// services/notifications.go - Notification dispatcher.
//
// The durable row is the source of truth; the real-time push is an
// optimization layered on top. A client that is offline simply sees the
// notification on its next poll.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"mediahub/models"
)

// NotificationInput is everything needed to create one notification.
type NotificationInput struct {
	RecipientID uint
	SenderID    *uint
	Type        string
	Message     string
	Link        string
	IconURL     string
}

func (in NotificationInput) validate() error {
	if in.RecipientID == 0 {
		return ErrMissingRecipient
	}
	if strings.TrimSpace(in.Message) == "" {
		return ErrEmptyMessage
	}
	if !models.ValidNotificationType(in.Type) {
		return ErrInvalidNotificationType
	}
	return nil
}

// createNotification validates and persists a notification inside the
// caller's transaction. Emission happens separately, after commit.
func (s *Service) createNotification(tx *gorm.DB, in NotificationInput) (*models.Notification, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	n := &models.Notification{
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		Type:        in.Type,
		Message:     in.Message,
		Link:        in.Link,
		IconURL:     in.IconURL,
		IsRead:      false,
		CreatedAt:   s.Now(),
	}
	if err := tx.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// emitNotification pushes the notification plus the recipient's current
// unread count to their room. Never fails the caller: the row is already
// committed and authoritative.
func (s *Service) emitNotification(n *models.Notification) {
	unread, err := s.UnreadCount(context.Background(), n.RecipientID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", n.RecipientID).Warn("Failed to compute unread count for push")
		unread = 0
	}

	payload := map[string]interface{}{
		"notification": n,
		"unread_count": unread,
	}
	if err := s.pub.PublishToUser(n.RecipientID, EventNotification, payload); err != nil {
		s.log.WithError(err).WithFields(map[string]interface{}{
			"user_id":         n.RecipientID,
			"notification_id": n.ID,
		}).Warn("Real-time notification push failed")
	}
}

// CreateAndEmitNotification persists a notification and then pushes it to
// the recipient if they are online.
func (s *Service) CreateAndEmitNotification(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	var n *models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.createNotification(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emitNotification(n)
	return n, nil
}

// UnreadCount is always derived from the table, never cached, so it cannot
// drift under concurrent reads and deletes.
func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// ListNotifications returns a page of the user's notifications, newest
// first, plus the total matching count.
func (s *Service) ListNotifications(ctx context.Context, userID uint, limit, offset int, unreadOnly bool) ([]models.Notification, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead flips one of the recipient's notifications to read. The
// recipient scope in the WHERE clause keeps users out of each other's rows.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification of the user and returns how
// many were affected.
func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// DeleteNotification removes one of the recipient's notifications.
func (s *Service) DeleteNotification(ctx context.Context, userID, notificationID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// broadcastChunkSize bounds how many recipients are loaded per batch.
const broadcastChunkSize = 200

// Broadcast sends one announcement to every non-banned user matching the
// role filter ("all" or a concrete role). Each recipient gets an
// independent insert: a failure partway through skips that recipient and
// moves on, so already-notified users are never double-sent on retry.
func (s *Service) Broadcast(ctx context.Context, senderID *uint, role, message, link string) (int, error) {
	if strings.TrimSpace(message) == "" {
		return 0, ErrEmptyMessage
	}

	q := s.db.WithContext(ctx).Model(&models.User{}).Where("is_banned = ?", false)
	if role != "" && role != "all" {
		q = q.Where("role = ?", role)
	}

	sent := 0
	var recipients []models.User
	err := q.FindInBatches(&recipients, broadcastChunkSize, func(_ *gorm.DB, _ int) error {
		for i := range recipients {
			n, err := s.createNotification(s.db, NotificationInput{
				RecipientID: recipients[i].ID,
				SenderID:    senderID,
				Type:        models.NotificationSystem,
				Message:     message,
				Link:        link,
			})
			if err != nil {
				s.log.WithError(err).WithField("user_id", recipients[i].ID).Error("Broadcast insert failed, skipping recipient")
				continue
			}
			s.emitNotification(n)
			sent++
		}
		return nil
	}).Error
	if err != nil {
		return sent, err
	}
	return sent, nil
}
