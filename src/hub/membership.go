package hub

import (
	"sort"
	"sync"
)

// Membership maps a user ID to the one channel it is currently in.
// There is no reverse index; MembersOf scans.
type Membership struct {
	mu       sync.RWMutex
	channels map[string]string
}

// NewMembership creates an empty channel membership index.
func NewMembership() *Membership {
	return &Membership{channels: make(map[string]string)}
}

// SetChannel overwrites the user's channel and returns the previous one.
func (m *Membership) SetChannel(userID, channelID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.channels[userID]
	m.channels[userID] = channelID
	return prev, ok
}

// GetChannel returns the channel userID is in.
func (m *Membership) GetChannel(userID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[userID]
	return ch, ok
}

// Clear removes the user's membership and returns the channel it held.
func (m *Membership) Clear(userID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[userID]
	delete(m.channels, userID)
	return ch, ok
}

// MembersOf returns the sorted user IDs whose channel is channelID.
func (m *Membership) MembersOf(channelID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, ch := range m.channels {
		if ch == channelID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of users with a channel.
func (m *Membership) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.channels)
}
