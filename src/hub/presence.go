package hub

import (
	"github.com/questline/relay/src/types"
)

// join reconciles presence for a user and admits s as its only socket.
// Reconciliation and registration complete within one event-loop turn, so a
// late close callback for the superseded socket cannot observe a half-done join.
func (h *Hub) join(s Socket, ev types.Join) {
	// A socket carries one user. Rejoining under another ID retires the old one.
	for _, userID := range h.registry.UsersOf(s) {
		if userID == ev.UserID {
			continue
		}
		ch, hadChannel := h.evict(userID)
		h.logger.Info().
			Str("user_id", userID).
			Str("new_user_id", ev.UserID).
			Str("client_id", s.ID()).
			Msg("socket rejoined as another user")
		if hadChannel {
			h.Broadcast(ch, types.UserLeft{UserID: userID}, userID)
		}
	}

	prev, err := h.registry.Register(ev.UserID, ev.UserName, s, types.CloseSuperseded, types.ReasonSuperseded)
	if prev != nil {
		log := h.logger.Info()
		if err != nil {
			log = h.logger.Warn().Err(err)
		}
		log.Str("user_id", ev.UserID).
			Str("old_client_id", prev.ID()).
			Str("client_id", s.ID()).
			Msg("superseded previous connection")
	}

	h.members.SetChannel(ev.UserID, ev.ChannelID)
	h.mirrorSet(ev.UserID, ev.ChannelID)

	h.logger.Info().
		Str("user_id", ev.UserID).
		Str("channel", ev.ChannelID).
		Str("client_id", s.ID()).
		Msg("user joined")

	h.Broadcast(ev.ChannelID, types.UserJoined{UserID: ev.UserID, UserName: ev.UserName}, ev.UserID)
	h.reply(s, types.JoinConfirmed{ChannelID: ev.ChannelID, ConnectedUsers: h.registry.Len()})
}
