package hub

import (
	"github.com/questline/relay/src/types"
)

// sweep evicts every registry entry whose socket is no longer open. Only
// when SweepNotify is set do channel peers hear about it. Sockets with a
// queued close callback are left to handleClose.
func (h *Hub) sweep() int {
	evicted := 0
	for _, e := range h.registry.Snapshot() {
		if e.Socket.IsOpen() || h.closePending(e.Socket) {
			continue
		}
		ch, hadChannel := h.evict(e.UserID)
		evicted++
		if h.opts.SweepNotify && hadChannel {
			h.Broadcast(ch, types.UserLeft{UserID: e.UserID}, e.UserID)
		}
	}
	if evicted > 0 {
		h.logger.Info().Int("evicted", evicted).Msg("swept dead connections")
	}
	return evicted
}

// handleClose runs when the transport reports s closed. Users that already
// moved to a newer socket are not matched and stay registered.
func (h *Hub) handleClose(s Socket) {
	defer h.clearPending(s)
	for _, userID := range h.registry.UsersOf(s) {
		ch, hadChannel := h.evict(userID)
		h.logger.Info().
			Str("user_id", userID).
			Str("channel", ch).
			Str("client_id", s.ID()).
			Msg("connection closed")
		if hadChannel {
			h.Broadcast(ch, types.UserLeft{UserID: userID}, userID)
		}
	}
}
