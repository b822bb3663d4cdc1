package hub

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/questline/relay/src/types"
	"github.com/rs/zerolog"
)

// PresenceMirror receives membership changes for out-of-process readers.
// Defined here to avoid circular imports with the bridge package.
// Implementations must not block.
type PresenceMirror interface {
	SetPresence(userID, channelID string)
	ClearPresence(userID string)
}

// Options tunes the hub event loop.
type Options struct {
	// SweepInterval is the period of the liveness sweep. Zero disables it.
	SweepInterval time.Duration
	// SweepNotify makes the sweeper broadcast userLeft for evicted users.
	SweepNotify bool
}

// Hub owns the connection registry and channel membership index. All
// mutation happens on the goroutine running Run, one event at a time.
type Hub struct {
	registry *Registry
	members  *Membership

	incoming chan frame
	closed   chan Socket
	announce chan announcement
	sweepReq chan chan int

	opts   Options
	mirror PresenceMirror
	mu     sync.RWMutex
	logger zerolog.Logger
	now    func() time.Time

	pendingMu sync.Mutex
	pending   map[Socket]struct{}

	done     chan struct{}
	stopOnce sync.Once
}

type frame struct {
	socket Socket
	data   []byte
}

type announcement struct {
	channel string
	payload json.RawMessage
}

// New creates a new Hub instance.
func New(logger zerolog.Logger, opts Options) *Hub {
	h := &Hub{
		registry: NewRegistry(),
		members:  NewMembership(),
		incoming: make(chan frame, 256),
		closed:   make(chan Socket, 64),
		announce: make(chan announcement, 64),
		sweepReq: make(chan chan int),
		opts:     opts,
		logger:   logger.With().Str("component", "hub").Logger(),
		now:      time.Now,
		pending:  make(map[Socket]struct{}),
		done:     make(chan struct{}),
	}
	h.registry.now = func() time.Time { return h.now() }
	return h
}

// SetMirror attaches a presence mirror to the hub.
func (h *Hub) SetMirror(m PresenceMirror) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mirror = m
}

// Run starts the hub event loop. Call in a goroutine.
func (h *Hub) Run() {
	var tick <-chan time.Time
	if h.opts.SweepInterval > 0 {
		ticker := time.NewTicker(h.opts.SweepInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case f := <-h.incoming:
			h.guard("frame", func() { h.route(f.socket, f.data) })
		case s := <-h.closed:
			h.guard("close", func() { h.handleClose(s) })
		case a := <-h.announce:
			h.guard("announce", func() {
				h.Broadcast(a.channel, types.Message{Message: a.payload}, "")
			})
		case <-tick:
			h.guard("sweep", func() { h.sweep() })
		case reply := <-h.sweepReq:
			n := 0
			h.guard("sweep", func() { n = h.sweep() })
			reply <- n
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop halts the hub event loop and closes every registered socket.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// HandleFrame queues an inbound frame from s. It returns false once the hub
// has stopped.
func (h *Hub) HandleFrame(s Socket, data []byte) bool {
	if h.stopped() {
		return false
	}
	select {
	case h.incoming <- frame{socket: s, data: data}:
		return true
	case <-h.done:
		return false
	}
}

// Disconnect queues the socket-close callback for s. Until the callback
// runs, the sweeper leaves s to it.
func (h *Hub) Disconnect(s Socket) {
	if h.stopped() {
		return
	}
	h.pendingMu.Lock()
	h.pending[s] = struct{}{}
	h.pendingMu.Unlock()
	select {
	case h.closed <- s:
	case <-h.done:
	}
}

// Announce queues a server-originated message for every member of channel.
func (h *Hub) Announce(channel string, payload json.RawMessage) error {
	if h.stopped() {
		return types.ErrHubStopped
	}
	select {
	case h.announce <- announcement{channel: channel, payload: payload}:
		return nil
	case <-h.done:
		return types.ErrHubStopped
	}
}

// SweepNow runs one liveness sweep on the event loop and returns the number
// of evicted users.
func (h *Hub) SweepNow() (int, error) {
	reply := make(chan int, 1)
	select {
	case h.sweepReq <- reply:
	case <-h.done:
		return 0, types.ErrHubStopped
	}
	select {
	case n := <-reply:
		return n, nil
	case <-h.done:
		return 0, types.ErrHubStopped
	}
}

func (h *Hub) closePending(s Socket) bool {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	_, ok := h.pending[s]
	return ok
}

func (h *Hub) clearPending(s Socket) {
	h.pendingMu.Lock()
	delete(h.pending, s)
	h.pendingMu.Unlock()
}

// guard isolates one event so a panic cannot stop the loop.
func (h *Hub) guard(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().
				Str("event", event).
				Err(fmt.Errorf("panic: %v", r)).
				Msg("event handler failed")
		}
	}()
	fn()
}

func (h *Hub) closeAll() {
	for _, e := range h.registry.Snapshot() {
		if !e.Socket.IsOpen() {
			continue
		}
		if err := e.Socket.Close(types.CloseGoingAway, types.ReasonGoingAway); err != nil {
			h.logger.Debug().Err(err).Str("user_id", e.UserID).Msg("close on shutdown failed")
		}
	}
	h.logger.Info().Int("connections", h.registry.Len()).Msg("hub stopped")
}

// reply sends ev directly to s if it is still open.
func (h *Hub) reply(s Socket, ev types.Outbound) bool {
	if !s.IsOpen() {
		return false
	}
	data, err := types.Encode(ev)
	if err != nil {
		h.logger.Error().Err(err).Str("event", ev.EventType()).Msg("encode failed")
		return false
	}
	if !s.Send(data) {
		h.logger.Warn().Str("client_id", s.ID()).Str("event", ev.EventType()).Msg("direct send failed")
		return false
	}
	return true
}

func (h *Hub) replyError(s Socket, msg string) {
	h.reply(s, types.Error{Message: msg, Timestamp: h.now()})
}

func (h *Hub) mirrorSet(userID, channelID string) {
	h.mu.RLock()
	m := h.mirror
	h.mu.RUnlock()
	if m != nil {
		m.SetPresence(userID, channelID)
	}
}

func (h *Hub) mirrorClear(userID string) {
	h.mu.RLock()
	m := h.mirror
	h.mu.RUnlock()
	if m != nil {
		m.ClearPresence(userID)
	}
}

// evict removes userID from both tables and returns the channel it was in.
func (h *Hub) evict(userID string) (string, bool) {
	h.registry.Unregister(userID)
	ch, ok := h.members.Clear(userID)
	h.mirrorClear(userID)
	return ch, ok
}
