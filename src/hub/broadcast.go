package hub

import (
	"github.com/questline/relay/src/types"
)

// BroadcastResult counts the outcome of one fan-out.
type BroadcastResult struct {
	Sent   int
	Failed int
}

// Broadcast sends ev to every registered user whose channel is channelID,
// skipping excludeUserID. Sends never block; a closed socket or full buffer
// counts as a failure and does not affect the remaining recipients.
func (h *Hub) Broadcast(channelID string, ev types.Outbound, excludeUserID string) BroadcastResult {
	var res BroadcastResult

	data, err := types.Encode(ev)
	if err != nil {
		h.logger.Error().Err(err).Str("event", ev.EventType()).Msg("encode failed")
		return res
	}

	for _, e := range h.registry.Snapshot() {
		if e.UserID == excludeUserID {
			continue
		}
		if ch, ok := h.members.GetChannel(e.UserID); !ok || ch != channelID {
			continue
		}
		if !e.Socket.IsOpen() || !e.Socket.Send(data) {
			res.Failed++
			h.logger.Debug().
				Str("user_id", e.UserID).
				Str("channel", channelID).
				Msg("broadcast send failed")
			continue
		}
		res.Sent++
	}

	h.logger.Debug().
		Str("channel", channelID).
		Str("event", ev.EventType()).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Msg("broadcast")
	return res
}
