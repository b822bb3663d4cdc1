package hub

import (
	"sync/atomic"
	"time"

	"github.com/questline/relay/src/types"
)

// Client wraps a WebSocket connection and manages message flow.
type Client struct {
	id          string
	conn        types.Conn
	hub         *Hub
	send        chan []byte
	connectedAt time.Time
	open        atomic.Bool
	done        chan struct{}
}

// NewClient creates a new WebSocket client wrapper. bufSize bounds the
// number of frames queued for a slow consumer before sends start failing.
func NewClient(id string, conn types.Conn, h *Hub, bufSize int) *Client {
	if bufSize <= 0 {
		bufSize = 256
	}
	c := &Client{
		id:          id,
		conn:        conn,
		hub:         h,
		send:        make(chan []byte, bufSize),
		connectedAt: time.Now(),
		done:        make(chan struct{}),
	}
	c.open.Store(true)
	return c
}

// ID returns the connection ID assigned at upgrade.
func (c *Client) ID() string { return c.id }

// ConnectedAt returns when the socket was accepted.
func (c *Client) ConnectedAt() time.Time { return c.connectedAt }

// IsOpen reports the readiness state of the socket.
func (c *Client) IsOpen() bool { return c.open.Load() }

// Send queues a frame for the write pump. It never blocks: a closed socket
// or a full buffer rejects the frame.
func (c *Client) Send(data []byte) bool {
	if !c.open.Load() {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close marks the socket closed and performs the close handshake with the
// given status in the background, so a stalled peer cannot hold up the
// caller. Only the first call has any effect.
func (c *Client) Close(code int, reason string) error {
	if !c.markClosed() {
		return nil
	}
	go func() {
		if err := c.conn.CloseWithStatus(code, reason); err != nil {
			c.hub.logger.Debug().Err(err).Str("client_id", c.id).Msg("close handshake failed")
		}
	}()
	return nil
}

// markClosed flips the readiness state. The caller that wins owns the
// teardown of the transport.
func (c *Client) markClosed() bool {
	if !c.open.CompareAndSwap(true, false) {
		return false
	}
	close(c.done)
	return true
}

// abort tears the transport down without a close handshake.
func (c *Client) abort() {
	if c.markClosed() {
		c.conn.Close()
	}
}

// ReadPump reads frames from the WebSocket and routes them to the hub.
// When it returns the socket is closed and the hub is notified.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.abort()
	}()

	for {
		data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.hub.HandleFrame(c, data) {
			c.Close(types.CloseGoingAway, types.ReasonGoingAway)
			return
		}
	}
}

// WritePump writes queued frames to the WebSocket and pings the peer every
// pingInterval. A write failure marks the socket closed.
func (c *Client) WritePump(pingInterval time.Duration) {
	if pingInterval <= 0 {
		pingInterval = 54 * time.Second
	}
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			if err := c.conn.WriteMessage(data); err != nil {
				c.abort()
				return
			}
		case <-ticker.C:
			if err := c.conn.WritePing(); err != nil {
				c.abort()
				return
			}
		case <-c.done:
			return
		}
	}
}
