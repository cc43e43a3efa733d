package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediahub/models"
)

func TestCreateAndEmitNotificationValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   NotificationInput
		want error
	}{
		{"missing recipient", NotificationInput{Type: models.NotificationSystem, Message: "hi"}, ErrMissingRecipient},
		{"empty message", NotificationInput{RecipientID: 1, Type: models.NotificationSystem, Message: "   "}, ErrEmptyMessage},
		{"unknown type", NotificationInput{RecipientID: 1, Type: "carrier_pigeon", Message: "hi"}, ErrInvalidNotificationType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateAndEmitNotification(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsValidation(err))
		})
	}

	var count int64
	require.NoError(t, svc.DB().Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreateAndEmitNotification(t *testing.T) {
	svc, pub := newTestService(t)
	user := createUser(t, svc, "alice")
	sender := createUser(t, svc, "bob")

	n, err := svc.CreateAndEmitNotification(context.Background(), NotificationInput{
		RecipientID: user.ID,
		SenderID:    &sender.ID,
		Type:        models.NotificationCommentReply,
		Message:     "bob replied to your comment",
		Link:        "/movies/1#comment-7",
	})
	require.NoError(t, err)
	require.NotZero(t, n.ID)
	assert.False(t, n.IsRead)

	events := pub.eventsFor(user.ID, EventNotification)
	require.Len(t, events, 1)
	payload, ok := events[0].Payload.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, payload["unread_count"])
}

func TestNotificationDurableWhenPushFails(t *testing.T) {
	svc, _ := newTestService(t)
	svc.pub = failingPublisher{}
	user := createUser(t, svc, "alice")

	n, err := svc.CreateAndEmitNotification(context.Background(), NotificationInput{
		RecipientID: user.ID,
		Type:        models.NotificationSystem,
		Message:     "maintenance tonight",
	})
	require.NoError(t, err)

	// The row survives even though the real-time push failed.
	var stored models.Notification
	require.NoError(t, svc.DB().First(&stored, n.ID).Error)
	assert.Equal(t, "maintenance tonight", stored.Message)

	unread, err := svc.UnreadCount(context.Background(), user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	svc, _ := newTestService(t)
	user := createUser(t, svc, "alice")
	other := createUser(t, svc, "bob")
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 5; i++ {
		n, err := svc.CreateAndEmitNotification(ctx, NotificationInput{
			RecipientID: user.ID,
			Type:        models.NotificationSystem,
			Message:     "announcement",
		})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	unread, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, unread)

	// Reading two leaves three.
	require.NoError(t, svc.MarkRead(ctx, user.ID, ids[0]))
	require.NoError(t, svc.MarkRead(ctx, user.ID, ids[1]))

	unread, err = svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	// Marking an already-read row again is a no-op error.
	// A different user cannot touch the rows at all.
	assert.ErrorIs(t, svc.MarkRead(ctx, other.ID, ids[2]), ErrNotificationNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, user.ID, 99999), ErrNotificationNotFound)
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := newTestService(t)
	user := createUser(t, svc, "alice")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateAndEmitNotification(ctx, NotificationInput{
			RecipientID: user.ID,
			Type:        models.NotificationSystem,
			Message:     "announcement",
		})
		require.NoError(t, err)
	}

	affected, err := svc.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, affected)

	unread, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	// Second pass has nothing left to flip.
	affected, err = svc.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestListNotifications(t *testing.T) {
	svc, _ := newTestService(t)
	user := createUser(t, svc, "alice")
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 4; i++ {
		n, err := svc.CreateAndEmitNotification(ctx, NotificationInput{
			RecipientID: user.ID,
			Type:        models.NotificationSystem,
			Message:     "announcement",
		})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	require.NoError(t, svc.MarkRead(ctx, user.ID, ids[0]))

	all, total, err := svc.ListNotifications(ctx, user.ID, 10, 0, false)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, all, 4)

	unreadOnly, total, err := svc.ListNotifications(ctx, user.ID, 10, 0, true)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, unreadOnly, 3)

	page, total, err := svc.ListNotifications(ctx, user.ID, 2, 2, false)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, page, 2)
}

func TestDeleteNotification(t *testing.T) {
	svc, _ := newTestService(t)
	user := createUser(t, svc, "alice")
	other := createUser(t, svc, "bob")
	ctx := context.Background()

	n, err := svc.CreateAndEmitNotification(ctx, NotificationInput{
		RecipientID: user.ID,
		Type:        models.NotificationSystem,
		Message:     "announcement",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteNotification(ctx, other.ID, n.ID), ErrNotificationNotFound)
	require.NoError(t, svc.DeleteNotification(ctx, user.ID, n.ID))
	assert.ErrorIs(t, svc.DeleteNotification(ctx, user.ID, n.ID), ErrNotificationNotFound)
}

func TestBroadcast(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	admin := createUser(t, svc, "admin")
	require.NoError(t, svc.DB().Model(admin).Update("role", models.RoleAdmin).Error)
	alice := createUser(t, svc, "alice")
	bob := createUser(t, svc, "bob")
	banned := createUser(t, svc, "banned")
	require.NoError(t, svc.DB().Model(banned).Update("is_banned", true).Error)

	sent, err := svc.Broadcast(ctx, &admin.ID, "all", "scheduled downtime", "/status")
	require.NoError(t, err)
	assert.Equal(t, 3, sent) // admin, alice, bob; banned excluded

	for _, u := range []*models.User{alice, bob} {
		unread, err := svc.UnreadCount(ctx, u.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, unread, "user %s", u.Username)
		assert.Len(t, pub.eventsFor(u.ID, EventNotification), 1)
	}

	var bannedCount int64
	require.NoError(t, svc.DB().Model(&models.Notification{}).
		Where("recipient_id = ?", banned.ID).Count(&bannedCount).Error)
	assert.EqualValues(t, 0, bannedCount)
}

func TestBroadcastRoleFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin := createUser(t, svc, "admin")
	require.NoError(t, svc.DB().Model(admin).Update("role", models.RoleAdmin).Error)
	mod := createUser(t, svc, "mod")
	require.NoError(t, svc.DB().Model(mod).Update("role", models.RoleModerator).Error)
	createUser(t, svc, "alice")

	sent, err := svc.Broadcast(ctx, &admin.ID, models.RoleModerator, "mod meeting", "")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	unread, err := svc.UnreadCount(ctx, mod.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

func TestBroadcastEmptyMessage(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Broadcast(context.Background(), nil, "all", "  ", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
