// realtime/hub.go - Per-user publish/subscribe over websockets.
//
// Every authenticated connection joins the room of its user id; publishing
// to a user fans out to all of their live connections. The hub is handed to
// the services layer as a Publisher, never reached through a global.
package realtime

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second

	// Per-connection outbound buffer. A slow client loses events rather
	// than blocking the publisher; durable state is in the database.
	sendBufferSize = 64
)

// Envelope is the wire format for every pushed event.
type Envelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type client struct {
	id     string
	userID uint
	conn   *websocket.Conn
	send   chan Envelope
	done   chan struct{}
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub tracks live connections grouped by user id.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[string]*client
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.New()
	}
	return &Hub{
		clients: make(map[uint]map[string]*client),
		log:     log,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[string]*client)
	}
	h.clients[c.userID][c.id] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.userID]; ok {
		delete(conns, c.id)
		if len(conns) == 0 {
			delete(h.clients, c.userID)
		}
	}
}

// OnlineUsers returns how many distinct users have at least one live
// connection.
func (h *Hub) OnlineUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsOnline reports whether the user has a live connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// PublishToUser delivers an event to every live connection of one user.
// An offline user is not an error. A full buffer drops the event for that
// connection; the client catches up from the durable store.
func (h *Hub) PublishToUser(userID uint, event string, payload interface{}) error {
	h.mu.RLock()
	conns := make([]*client, 0, len(h.clients[userID]))
	for _, c := range h.clients[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	env := Envelope{Event: event, Payload: payload}
	for _, c := range conns {
		select {
		case c.send <- env:
		default:
			h.log.WithFields(logrus.Fields{
				"user_id": userID,
				"event":   event,
				"conn":    c.id,
			}).Warn("Dropping event for slow websocket client")
		}
	}
	return nil
}

// Handler returns the websocket handler for an upgraded connection. It
// expects UpgradeMiddleware to have resolved the user id already.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		userID, ok := conn.Locals(localUserID).(uint)
		if !ok || userID == 0 {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthenticated"))
			conn.Close()
			return
		}

		c := &client{
			id:     uuid.New().String(),
			userID: userID,
			conn:   conn,
			send:   make(chan Envelope, sendBufferSize),
			done:   make(chan struct{}),
		}
		h.register(c)
		h.log.WithFields(logrus.Fields{"user_id": userID, "conn": c.id}).Debug("Websocket connected")

		go h.writePump(c)
		h.readPump(c)

		h.unregister(c)
		c.close()
		conn.Close()
		h.log.WithFields(logrus.Fields{"user_id": userID, "conn": c.id}).Debug("Websocket disconnected")
	}
}

// readPump drains inbound frames until the peer goes away. Clients do not
// send application messages; reading is what surfaces the close.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.close()
				c.conn.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				c.conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
