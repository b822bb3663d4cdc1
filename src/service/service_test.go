package service

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/questline/relay/src/hub"
	"github.com/questline/relay/src/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSocket implements hub.Socket in memory.
type stubSocket struct {
	id     string
	mu     sync.Mutex
	open   bool
	frames []string
}

func newStubSocket(id string) *stubSocket { return &stubSocket{id: id, open: true} }

func (s *stubSocket) ID() string { return s.id }

func (s *stubSocket) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *stubSocket) Send(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return false
	}
	s.frames = append(s.frames, string(data))
	return true
}

func (s *stubSocket) Close(int, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

func (s *stubSocket) count(typ string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.frames {
		var ev struct {
			Type string `json:"type"`
		}
		if json.Unmarshal([]byte(f), &ev) == nil && ev.Type == typ {
			n++
		}
	}
	return n
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	h := hub.New(zerolog.Nop(), hub.Options{})
	go h.Run()
	t.Cleanup(h.Stop)
	return New(h, zerolog.Nop())
}

func join(t *testing.T, svc *Service, s *stubSocket, userID, channel string) {
	t.Helper()
	frame := `{"type":"join","userId":"` + userID + `","userName":"` + userID + `","channelId":"` + channel + `"}`
	require.True(t, svc.Hub().HandleFrame(s, []byte(frame)))
	require.Eventually(t, func() bool {
		st := svc.UserStatus(userID)
		return st.Connected && st.Channel == channel
	}, time.Second, 5*time.Millisecond)
}

func TestServiceStatus(t *testing.T) {
	svc := newTestService(t)
	join(t, svc, newStubSocket("s1"), "A", "general")
	join(t, svc, newStubSocket("s2"), "B", "guild_7")
	join(t, svc, newStubSocket("s3"), "C", "general")

	st := svc.Status()
	assert.Equal(t, 3, st.Connections)
	assert.Equal(t, []string{"general", "guild_7"}, st.Channels)
	assert.Equal(t, []string{"A", "C"}, svc.ChannelMembers("general"))
	assert.Len(t, svc.Users(), 3)
}

func TestServiceUserStatus(t *testing.T) {
	svc := newTestService(t)
	s := newStubSocket("s1")
	join(t, svc, s, "A", "general")

	st := svc.UserStatus("A")
	assert.Equal(t, "general", st.Channel)
	assert.True(t, st.Connected)
	assert.Equal(t, "s1", st.ClientID)

	s.Close(0, "")
	assert.False(t, svc.UserStatus("A").Connected, "a dead socket reads as disconnected before sweep")

	unknown := svc.UserStatus("nobody")
	assert.False(t, unknown.Connected)
	assert.Empty(t, unknown.Channel)
}

func TestServiceAnnounce(t *testing.T) {
	svc := newTestService(t)
	s := newStubSocket("s1")
	join(t, svc, s, "A", "guild_7")

	require.NoError(t, svc.Announce("guild_7", json.RawMessage(`{"text":"territory lost"}`)))
	require.Eventually(t, func() bool { return s.count(types.TypeMessage) == 1 }, time.Second, 5*time.Millisecond)
}

func TestServiceAnnounceValidation(t *testing.T) {
	svc := newTestService(t)

	assert.ErrorIs(t, svc.Announce("", json.RawMessage(`{"a":1}`)), types.ErrMissingField)
	assert.ErrorIs(t, svc.Announce("general", nil), types.ErrMissingField)
	assert.ErrorIs(t, svc.Announce("general", json.RawMessage(`{oops`)), types.ErrMalformedFrame)
}

func TestServiceSweep(t *testing.T) {
	svc := newTestService(t)
	s := newStubSocket("s1")
	join(t, svc, s, "A", "general")
	s.Close(0, "")

	n, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, svc.Status().Connections)
}

func TestServiceAfterStop(t *testing.T) {
	h := hub.New(zerolog.Nop(), hub.Options{})
	go h.Run()
	svc := New(h, zerolog.Nop())
	h.Stop()

	assert.ErrorIs(t, svc.Announce("general", json.RawMessage(`"hi"`)), types.ErrHubStopped)
	_, err := svc.Sweep()
	assert.ErrorIs(t, err, types.ErrHubStopped)
}
