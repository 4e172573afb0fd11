package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeTimeout = 10 * time.Second
	keepAlive    = 50 * time.Second
	queueSize    = 64
	inboundLimit = 1 << 10
)

// Client streams one user's form events to a browser tab. The stream is push only:
// inbound frames are dropped and only the peer's close is acted on.
type Client struct {
	id    string
	user  string
	conn  *websocket.Conn
	hub   *Hub
	queue chan []byte
	done  chan struct{}
	once  sync.Once
}

// NewClient wraps conn for user. Nothing is written until Serve runs.
func NewClient(conn *websocket.Conn, user string, hub *Hub) *Client {
	return &Client{
		id:    uuid.NewString(),
		user:  user,
		conn:  conn,
		hub:   hub,
		queue: make(chan []byte, queueSize),
		done:  make(chan struct{}),
	}
}

func (c *Client) ID() string   { return c.id }
func (c *Client) User() string { return c.user }

// Send queues data without blocking. A full queue means the tab stopped reading.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.queue <- data:
		return nil
	default:
		return ErrClientClosed
	}
}

// Close ends the stream; later calls are no-ops
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// Serve writes queued events until either side goes away, then leaves the hub.
// It blocks.
func (c *Client) Serve() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()
	go c.drain()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.queue:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("client_id", c.id).Str("user", c.user).Msg("WebSocket write failed")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

// drain reads until the peer goes away so control frames get answered
func (c *Client) drain() {
	defer c.Close()
	c.conn.SetReadLimit(inboundLimit)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("client_id", c.id).Str("user", c.user).Msg("WebSocket closed unexpectedly")
			}
			return
		}
	}
}
