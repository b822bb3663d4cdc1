package types

import (
	"errors"
	"time"
)

// WebSocket close status codes used by the relay.
const (
	// CloseGoingAway is sent to every socket when the relay shuts down.
	CloseGoingAway = 1001
	// CloseSuperseded is sent to a user's previous socket when a newer
	// connection joins with the same user ID.
	CloseSuperseded = 4000
)

// Close reasons paired with the status codes above.
const (
	ReasonGoingAway  = "relay shutting down"
	ReasonSuperseded = "superseded by new connection"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrMissingField   = errors.New("missing required field")
	ErrNotJoined      = errors.New("user has not joined")
	ErrHubStopped     = errors.New("hub stopped")
)

// Conn abstracts a WebSocket connection for testability.
// Frames are exchanged as raw UTF-8 JSON text so the relay can tell a
// transport failure apart from an unparsable frame.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	WritePing() error
	CloseWithStatus(code int, reason string) error
	Close() error
}

// UserStatus is a read-only presence snapshot for one user.
type UserStatus struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	Connected bool      `json:"connected"`
	ClientID  string    `json:"clientId,omitempty"`
	JoinedAt  time.Time `json:"joinedAt,omitzero"`
}

// Status summarizes the relay for the status-query surface.
type Status struct {
	Connections int      `json:"connections"`
	Channels    []string `json:"channels"`
}
