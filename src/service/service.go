package service

import (
	"encoding/json"
	"fmt"

	"github.com/questline/relay/src/hub"
	"github.com/questline/relay/src/types"
	"github.com/rs/zerolog"
)

// Service provides the high-level relay API used outside the socket path.
type Service struct {
	hub    *hub.Hub
	logger zerolog.Logger
}

// New creates a new relay service backed by the given hub.
func New(h *hub.Hub, logger zerolog.Logger) *Service {
	return &Service{hub: h, logger: logger.With().Str("component", "service").Logger()}
}

// Hub returns the underlying hub.
func (s *Service) Hub() *hub.Hub { return s.hub }

// Status returns the total connection count and the active channels.
func (s *Service) Status() types.Status {
	return s.hub.Status()
}

// UserStatus returns the channel and connection state of one user.
func (s *Service) UserStatus(userID string) types.UserStatus {
	return s.hub.UserStatus(userID)
}

// Users returns a snapshot of every registered user.
func (s *Service) Users() []types.UserStatus {
	return s.hub.Users()
}

// ChannelMembers returns the registered users currently in a channel.
func (s *Service) ChannelMembers(channel string) []string {
	return s.hub.ChannelMembers(channel)
}

// Announce broadcasts a server-originated message to every member of a
// channel. The payload is forwarded verbatim.
func (s *Service) Announce(channel string, payload json.RawMessage) error {
	if channel == "" {
		return fmt.Errorf("announce: %w: channel", types.ErrMissingField)
	}
	if types.IsEmptyPayload(payload) {
		return fmt.Errorf("announce: %w: message", types.ErrMissingField)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("announce: %w", types.ErrMalformedFrame)
	}
	if err := s.hub.Announce(channel, payload); err != nil {
		return fmt.Errorf("announce to %s: %w", channel, err)
	}
	s.logger.Debug().Str("channel", channel).Msg("announcement queued")
	return nil
}

// Sweep runs a liveness sweep immediately and returns how many users it evicted.
func (s *Service) Sweep() (int, error) {
	n, err := s.hub.SweepNow()
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	return n, nil
}
