package providers

import (
	"time"

	"github.com/fasthttp/websocket"
	"github.com/questline/relay/config"
)

// fasthttpConn wraps fasthttp/websocket.Conn to satisfy types.Conn.
// It owns the keepalive deadlines: every pong or frame pushes the read
// deadline out by pongWait.
type fasthttpConn struct {
	conn         *websocket.Conn
	pongWait     time.Duration
	writeTimeout time.Duration
}

func newFasthttpConn(conn *websocket.Conn, cfg *config.RelayConfig) *fasthttpConn {
	f := &fasthttpConn{
		conn:         conn,
		pongWait:     cfg.PongWait,
		writeTimeout: cfg.WriteTimeout,
	}
	if cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}
	f.extendRead()
	conn.SetPongHandler(func(string) error {
		f.extendRead()
		return nil
	})
	return f
}

func (f *fasthttpConn) extendRead() {
	if f.pongWait > 0 {
		_ = f.conn.SetReadDeadline(time.Now().Add(f.pongWait))
	}
}

// ReadMessage returns the next text frame. Binary frames are skipped.
func (f *fasthttpConn) ReadMessage() ([]byte, error) {
	for {
		mt, data, err := f.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		f.extendRead()
		if mt == websocket.TextMessage {
			return data, nil
		}
	}
}

func (f *fasthttpConn) WriteMessage(data []byte) error {
	_ = f.conn.SetWriteDeadline(time.Now().Add(f.writeTimeout))
	return f.conn.WriteMessage(websocket.TextMessage, data)
}

func (f *fasthttpConn) WritePing() error {
	return f.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(f.writeTimeout))
}

// CloseWithStatus sends a close frame carrying code and reason, then closes
// the underlying connection.
func (f *fasthttpConn) CloseWithStatus(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	werr := f.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(f.writeTimeout))
	cerr := f.conn.Close()
	if werr != nil && werr != websocket.ErrCloseSent {
		return werr
	}
	return cerr
}

func (f *fasthttpConn) Close() error { return f.conn.Close() }
