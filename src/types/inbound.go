package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Inbound event tags.
const (
	TypeJoin          = "join"
	TypeLeave         = "leave"
	TypeMessage       = "message"
	TypeSwitchChannel = "switchChannel"
	TypePing          = "ping"
)

// Inbound is a decoded client frame. The set of implementations is closed:
// Join, Leave, ChatMessage, SwitchChannel, Ping and Unknown.
type Inbound interface {
	inbound()
}

// Join admits a user into a channel on the sending socket.
type Join struct {
	UserID    string
	UserName  string
	ChannelID string
}

// Leave removes a user from the relay.
type Leave struct {
	UserID string
}

// ChatMessage carries an opaque chat payload addressed to a channel.
type ChatMessage struct {
	ChannelID string
	Message   json.RawMessage
}

// SwitchChannel moves an already joined user to another channel.
type SwitchChannel struct {
	UserID    string
	ChannelID string
}

// Ping asks for a pong carrying the server time.
type Ping struct{}

// Unknown is a well-formed frame whose type tag the relay does not handle.
type Unknown struct {
	Type string
}

func (Join) inbound()          {}
func (Leave) inbound()         {}
func (ChatMessage) inbound()   {}
func (SwitchChannel) inbound() {}
func (Ping) inbound()          {}
func (Unknown) inbound()       {}

// ID is an opaque identifier that accepts either a JSON string or a JSON number.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type header struct {
	Type string `json:"type"`
}

type presencePayload struct {
	UserID    ID     `json:"userId"`
	UserName  string `json:"userName"`
	ChannelID ID     `json:"channelId"`
}

type chatPayload struct {
	ChannelID ID              `json:"channelId"`
	Message   json.RawMessage `json:"message"`
}

// DecodeInbound parses one text frame. Errors wrap ErrMalformedFrame or
// ErrMissingField. The payload is only inspected for tags the relay handles,
// so a frame with an unrecognized type decodes to Unknown without error.
func DecodeInbound(data []byte) (Inbound, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch h.Type {
	case TypeJoin, TypeLeave, TypeSwitchChannel:
		var p presencePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		return decodePresence(h.Type, p)
	case TypeMessage:
		// Presence of channelId and payload is checked by the router, which
		// drops incomplete chat frames without replying. A payload that does
		// not decode counts as incomplete.
		var p chatPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return ChatMessage{}, nil
		}
		return ChatMessage{ChannelID: string(p.ChannelID), Message: p.Message}, nil
	case TypePing:
		return Ping{}, nil
	default:
		return Unknown{Type: h.Type}, nil
	}
}

func decodePresence(typ string, p presencePayload) (Inbound, error) {
	switch typ {
	case TypeJoin:
		if p.UserID == "" || p.ChannelID == "" {
			return nil, fmt.Errorf("%w: join requires userId and channelId", ErrMissingField)
		}
		return Join{UserID: string(p.UserID), UserName: p.UserName, ChannelID: string(p.ChannelID)}, nil
	case TypeLeave:
		if p.UserID == "" {
			return nil, fmt.Errorf("%w: leave requires userId", ErrMissingField)
		}
		return Leave{UserID: string(p.UserID)}, nil
	default:
		if p.UserID == "" || p.ChannelID == "" {
			return nil, fmt.Errorf("%w: switchChannel requires userId and channelId", ErrMissingField)
		}
		return SwitchChannel{UserID: string(p.UserID), ChannelID: string(p.ChannelID)}, nil
	}
}

// IsEmptyPayload reports whether a chat payload is absent or carries nothing.
func IsEmptyPayload(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", `""`, "{}", "[]":
		return true
	}
	return false
}
