package hub

import (
	"errors"

	"github.com/questline/relay/src/types"
)

// route decodes one frame from s and dispatches it.
func (h *Hub) route(s Socket, data []byte) {
	ev, err := types.DecodeInbound(data)
	if err != nil {
		h.logger.Warn().Err(err).Str("client_id", s.ID()).Msg("rejected frame")
		msg := "Invalid message format"
		if errors.Is(err, types.ErrMissingField) {
			msg = err.Error()
		}
		h.replyError(s, msg)
		return
	}

	switch ev := ev.(type) {
	case types.Join:
		h.join(s, ev)
	case types.Leave:
		h.leave(ev)
	case types.ChatMessage:
		h.chat(s, ev)
	case types.SwitchChannel:
		h.switchChannel(s, ev)
	case types.Ping:
		h.reply(s, types.Pong{Timestamp: h.now()})
	case types.Unknown:
		h.logger.Warn().Str("type", ev.Type).Str("client_id", s.ID()).Msg("unknown message type")
	}
}

func (h *Hub) leave(ev types.Leave) {
	ch, hadChannel := h.evict(ev.UserID)
	h.logger.Info().Str("user_id", ev.UserID).Str("channel", ch).Msg("user left")
	if hadChannel {
		h.Broadcast(ch, types.UserLeft{UserID: ev.UserID}, ev.UserID)
	}
}

func (h *Hub) chat(s Socket, ev types.ChatMessage) {
	if ev.ChannelID == "" || types.IsEmptyPayload(ev.Message) {
		h.logger.Debug().Str("client_id", s.ID()).Msg("dropped incomplete chat message")
		return
	}

	// An unjoined socket has no user to exclude.
	var sender string
	if ids := h.registry.UsersOf(s); len(ids) > 0 {
		sender = ids[0]
	}
	h.Broadcast(ev.ChannelID, types.Message{Message: ev.Message}, sender)
}

func (h *Hub) switchChannel(s Socket, ev types.SwitchChannel) {
	entry, ok := h.registry.Lookup(ev.UserID)
	if !ok {
		h.logger.Warn().Str("user_id", ev.UserID).Msg("switch channel before join")
		h.replyError(s, types.ErrNotJoined.Error())
		return
	}

	old, hadOld := h.members.SetChannel(ev.UserID, ev.ChannelID)
	h.mirrorSet(ev.UserID, ev.ChannelID)

	h.logger.Info().
		Str("user_id", ev.UserID).
		Str("from", old).
		Str("to", ev.ChannelID).
		Msg("switched channel")

	if hadOld && old != ev.ChannelID {
		h.Broadcast(old, types.UserLeft{UserID: ev.UserID}, ev.UserID)
	}
	h.Broadcast(ev.ChannelID, types.UserJoined{UserID: ev.UserID, UserName: entry.UserName}, ev.UserID)
}
