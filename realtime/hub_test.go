package realtime

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewHub(log)
}

// newTestClient builds a client without a live connection; publish paths
// only ever touch the send channel.
func newTestClient(id string, userID uint, buffer int) *client {
	return &client{
		id:     id,
		userID: userID,
		send:   make(chan Envelope, buffer),
		done:   make(chan struct{}),
	}
}

func TestPublishToUserFansOut(t *testing.T) {
	hub := newTestHub()

	c1 := newTestClient("conn-1", 7, 4)
	c2 := newTestClient("conn-2", 7, 4)
	other := newTestClient("conn-3", 8, 4)
	hub.register(c1)
	hub.register(c2)
	hub.register(other)

	payload := map[string]interface{}{"points": 30}
	require.NoError(t, hub.PublishToUser(7, "stats_update", payload))

	for _, c := range []*client{c1, c2} {
		select {
		case env := <-c.send:
			assert.Equal(t, "stats_update", env.Event)
			assert.Equal(t, payload, env.Payload)
		default:
			t.Fatalf("connection %s received nothing", c.id)
		}
	}
	assert.Empty(t, other.send)
}

func TestPublishToOfflineUserIsNoop(t *testing.T) {
	hub := newTestHub()
	assert.NoError(t, hub.PublishToUser(42, "notification", nil))
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub()
	c := newTestClient("conn-1", 7, 1)
	hub.register(c)

	require.NoError(t, hub.PublishToUser(7, "notification", "first"))
	// Buffer is full now; the second publish must not block or error.
	require.NoError(t, hub.PublishToUser(7, "notification", "second"))

	env := <-c.send
	assert.Equal(t, "first", env.Payload)
	assert.Empty(t, c.send)
}

func TestRegisterUnregisterCounts(t *testing.T) {
	hub := newTestHub()
	assert.Equal(t, 0, hub.OnlineUsers())
	assert.False(t, hub.IsOnline(7))

	c1 := newTestClient("conn-1", 7, 1)
	c2 := newTestClient("conn-2", 7, 1)
	c3 := newTestClient("conn-3", 9, 1)
	hub.register(c1)
	hub.register(c2)
	hub.register(c3)

	// Two distinct users online, one with two tabs.
	assert.Equal(t, 2, hub.OnlineUsers())
	assert.True(t, hub.IsOnline(7))

	hub.unregister(c1)
	assert.True(t, hub.IsOnline(7))
	hub.unregister(c2)
	assert.False(t, hub.IsOnline(7))
	assert.Equal(t, 1, hub.OnlineUsers())

	// Unregistering twice is harmless.
	hub.unregister(c2)
	assert.Equal(t, 1, hub.OnlineUsers())
}
