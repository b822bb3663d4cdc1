package types

import (
	"encoding/json"
	"time"
)

// Outbound event tags.
const (
	TypeUserJoined    = "userJoined"
	TypeUserLeft      = "userLeft"
	TypeJoinConfirmed = "joinConfirmed"
	TypePong          = "pong"
	TypeError         = "error"
)

// Outbound is an event the relay sends to clients. Encode adds the type tag.
type Outbound interface {
	EventType() string
}

type UserJoined struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type UserLeft struct {
	UserID string `json:"userId"`
}

// Message forwards a chat payload verbatim.
type Message struct {
	Message json.RawMessage `json:"message"`
}

type JoinConfirmed struct {
	ChannelID      string `json:"channelId"`
	ConnectedUsers int    `json:"connectedUsers"`
}

type Pong struct {
	Timestamp time.Time `json:"timestamp"`
}

type Error struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (UserJoined) EventType() string    { return TypeUserJoined }
func (UserLeft) EventType() string      { return TypeUserLeft }
func (Message) EventType() string       { return TypeMessage }
func (JoinConfirmed) EventType() string { return TypeJoinConfirmed }
func (Pong) EventType() string          { return TypePong }
func (Error) EventType() string         { return TypeError }

func (e UserJoined) MarshalJSON() ([]byte, error) {
	type body UserJoined
	return json.Marshal(struct {
		Type string `json:"type"`
		body
	}{e.EventType(), body(e)})
}

func (e UserLeft) MarshalJSON() ([]byte, error) {
	type body UserLeft
	return json.Marshal(struct {
		Type string `json:"type"`
		body
	}{e.EventType(), body(e)})
}

func (e Message) MarshalJSON() ([]byte, error) {
	type body Message
	return json.Marshal(struct {
		Type string `json:"type"`
		body
	}{e.EventType(), body(e)})
}

func (e JoinConfirmed) MarshalJSON() ([]byte, error) {
	type body JoinConfirmed
	return json.Marshal(struct {
		Type string `json:"type"`
		body
	}{e.EventType(), body(e)})
}

func (e Pong) MarshalJSON() ([]byte, error) {
	type body Pong
	return json.Marshal(struct {
		Type string `json:"type"`
		body
	}{e.EventType(), body(e)})
}

func (e Error) MarshalJSON() ([]byte, error) {
	type body Error
	return json.Marshal(struct {
		Type string `json:"type"`
		body
	}{e.EventType(), body(e)})
}

// Encode serializes an outbound event to a single text frame.
func Encode(ev Outbound) ([]byte, error) {
	return json.Marshal(ev)
}
