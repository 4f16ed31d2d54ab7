package services

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Maximum inbound frame size.
	maxMessageSize = 4096

	// Outbound frame buffer per connection.
	sendBufferSize = 256
)

// Client is one live websocket connection owned by the presence registry.
// A user may hold several clients at once; the registry derives the user's
// status from the size of that set.
type Client struct {
	UserID  string
	IsAdmin bool

	conn *websocket.Conn
	send chan []byte

	mu       sync.Mutex
	alive    bool
	lastPong time.Time
	closed   bool
}

// NewClient wraps an accepted websocket connection. The connection counts as
// alive until the first heartbeat sweep it fails to answer.
func NewClient(userID string, isAdmin bool, conn *websocket.Conn) *Client {
	return &Client{
		UserID:  userID,
		IsAdmin: isAdmin,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		alive:   true,
	}
}

// markAlive records a pong from the peer.
func (c *Client) markAlive() {
	c.mu.Lock()
	c.alive = true
	c.lastPong = time.Now()
	c.mu.Unlock()
}

// lastPongTime reports when the peer last answered a probe; zero if never.
func (c *Client) lastPongTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPong
}

// staleForEviction flips the liveness flag for the next sweep round and
// reports whether the client failed to answer the previous probe.
func (c *Client) staleForEviction() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	stale := !c.alive
	c.alive = false
	return stale
}

// enqueue hands a frame to the write pump without blocking. A full buffer or
// an already-closed client drops the frame; delivery is fire-and-forget.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// close shuts the outbound channel exactly once. The write pump drains what
// is left and tears down the socket.
func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.send)
}

// ping probes the peer. WriteControl is safe to call concurrently with the
// write pump.
func (c *Client) ping() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// ReadPump consumes inbound frames until the peer goes away, then walks the
// full closure path through the presence service.
func (c *Client) ReadPump(ps *PresenceService) {
	defer ps.Remove(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.markAlive()
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		ps.HandleMessage(c, data)
	}
}

// WritePump serializes all data frames onto the socket. It exits when the
// registry closes the send channel or the transport fails; either way the
// socket is torn down, which unblocks the read pump.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}

	// Channel closed by the registry: say goodbye properly.
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
