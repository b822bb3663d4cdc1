package hub

import (
	"sort"

	"github.com/questline/relay/src/types"
)

// ConnectionCount returns the number of registered users.
func (h *Hub) ConnectionCount() int {
	return h.registry.Len()
}

// ActiveChannels returns the sorted channel IDs that have at least one
// registered member.
func (h *Hub) ActiveChannels() []string {
	seen := make(map[string]bool)
	for _, e := range h.registry.Snapshot() {
		if ch, ok := h.members.GetChannel(e.UserID); ok {
			seen[ch] = true
		}
	}
	channels := make([]string, 0, len(seen))
	for ch := range seen {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}

// ChannelMembers returns the registered users currently in channelID.
func (h *Hub) ChannelMembers(channelID string) []string {
	var ids []string
	for _, id := range h.members.MembersOf(channelID) {
		if _, ok := h.registry.Get(id); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// UserStatus returns the presence snapshot for userID. Unknown users are
// reported as not connected.
func (h *Hub) UserStatus(userID string) types.UserStatus {
	st := types.UserStatus{UserID: userID}
	e, ok := h.registry.Lookup(userID)
	if !ok {
		return st
	}
	st.UserName = e.UserName
	st.Connected = e.Socket.IsOpen()
	st.ClientID = e.Socket.ID()
	st.JoinedAt = e.JoinedAt
	st.Channel, _ = h.members.GetChannel(userID)
	return st
}

// Users returns a presence snapshot for every registered user.
func (h *Hub) Users() []types.UserStatus {
	entries := h.registry.Snapshot()
	out := make([]types.UserStatus, 0, len(entries))
	for _, e := range entries {
		ch, _ := h.members.GetChannel(e.UserID)
		out = append(out, types.UserStatus{
			UserID:    e.UserID,
			UserName:  e.UserName,
			Channel:   ch,
			Connected: e.Socket.IsOpen(),
			ClientID:  e.Socket.ID(),
			JoinedAt:  e.JoinedAt,
		})
	}
	return out
}

// Status returns the connection count and active channels.
func (h *Hub) Status() types.Status {
	return types.Status{
		Connections: h.ConnectionCount(),
		Channels:    h.ActiveChannels(),
	}
}
