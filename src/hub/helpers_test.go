package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// fakeSocket implements Socket and records every accepted frame.
type fakeSocket struct {
	id string

	mu          sync.Mutex
	open        bool
	frames      [][]byte
	closeCode   int
	closeReason string
	closeErr    error
	rejectSends bool
	sendCalls   int
}

func newFakeSocket(id string) *fakeSocket {
	return &fakeSocket{id: id, open: true}
}

func (f *fakeSocket) ID() string { return f.id }

func (f *fakeSocket) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeSocket) Send(data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if !f.open || f.rejectSends {
		return false
	}
	f.frames = append(f.frames, data)
	return true
}

func (f *fakeSocket) Close(code int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.closeCode = code
	f.closeReason = reason
	return f.closeErr
}

// drop simulates a network failure that no close event reports.
func (f *fakeSocket) drop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

func (f *fakeSocket) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendCalls
}

// events decodes every frame sent to the socket.
func (f *fakeSocket) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			t.Fatalf("frame is not JSON: %s", fr)
		}
		out = append(out, m)
	}
	return out
}

// eventsOfType filters events by their type tag.
func (f *fakeSocket) eventsOfType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ev := range f.events(t) {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeSocket) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
	f.sendCalls = 0
}

var errCloseFailed = errors.New("close failed")

// newTestHub creates a hub whose handlers are driven directly by the test.
func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return New(zerolog.Nop(), Options{})
}

func joinFrame(userID, userName, channel string) []byte {
	data, _ := json.Marshal(map[string]string{
		"type":      "join",
		"userId":    userID,
		"userName":  userName,
		"channelId": channel,
	})
	return data
}

func chatFrame(channel, text string) []byte {
	data, _ := json.Marshal(map[string]any{
		"type":      "message",
		"channelId": channel,
		"message":   map[string]string{"text": text},
	})
	return data
}

func switchFrame(userID, channel string) []byte {
	data, _ := json.Marshal(map[string]string{
		"type":      "switchChannel",
		"userId":    userID,
		"channelId": channel,
	})
	return data
}
