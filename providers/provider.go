package providers

import (
	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/questline/relay/config"
	"github.com/questline/relay/src/bridge"
	"github.com/questline/relay/src/hub"
	"github.com/questline/relay/src/service"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// RelayProvider wires the hub, service, presence mirror and HTTP surface.
type RelayProvider struct {
	active   bool
	cfg      *config.RelayConfig
	logger   zerolog.Logger
	hub      *hub.Hub
	service  *service.Service
	mirror   bridge.Mirror
	app      *fiber.App
	upgrader websocket.FastHTTPUpgrader

	// newMirror builds the presence mirror on activation. A nil result
	// runs the relay without one.
	newMirror func(zerolog.Logger) bridge.Mirror
}

// NewRelayProvider creates a new relay provider instance.
func NewRelayProvider(cfg *config.RelayConfig, logger zerolog.Logger) *RelayProvider {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &RelayProvider{
		cfg:    cfg,
		logger: logger,
		newMirror: func(l zerolog.Logger) bridge.Mirror {
			return bridge.NewRedisPresence(bridge.RedisConfigFromEnv(), l)
		},
	}
}

func (p *RelayProvider) ID() string      { return "questline/relay" }
func (p *RelayProvider) Name() string    { return "Presence Relay" }
func (p *RelayProvider) Version() string { return "0.1.0" }
func (p *RelayProvider) IsActive() bool  { return p.active }

// Activate initializes the hub, service and HTTP routes and starts the event loop.
func (p *RelayProvider) Activate() error {
	p.hub = hub.New(p.logger, hub.Options{
		SweepInterval: p.cfg.SweepInterval,
		SweepNotify:   p.cfg.SweepNotify,
	})
	p.service = service.New(p.hub, p.logger)
	p.upgrader = websocket.FastHTTPUpgrader{
		ReadBufferSize:  p.cfg.ReadBufferSize,
		WriteBufferSize: p.cfg.WriteBufferSize,
		// Socket identity is trusted as supplied at join time.
		CheckOrigin: func(*fasthttp.RequestCtx) bool { return true },
	}

	go p.hub.Run()

	// Attempt the presence mirror (non-fatal if unavailable).
	p.initMirror()

	p.app = fiber.New(fiber.Config{AppName: p.Name()})
	p.RegisterRoutes(p.app)

	p.active = true
	p.logger.Info().
		Str("provider", p.ID()).
		Str("path", p.cfg.Path).
		Dur("sweep_interval", p.cfg.SweepInterval).
		Msg("relay activated")
	return nil
}

// initMirror tries to start the presence mirror.
// If the store is not reachable, the relay runs without one.
func (p *RelayProvider) initMirror() {
	if p.newMirror == nil {
		return
	}
	m := p.newMirror(p.logger)
	if m == nil {
		return
	}
	if err := m.Start(); err != nil {
		p.logger.Warn().Err(err).Msg("presence mirror unavailable, running standalone")
		return
	}

	p.mirror = m
	p.hub.SetMirror(m)
	p.logger.Info().Msg("presence mirror connected")
}

// Deactivate stops the mirror and the hub event loop, closing every socket.
func (p *RelayProvider) Deactivate() error {
	if p.hub != nil {
		p.hub.Stop()
	}
	if p.mirror != nil {
		if err := p.mirror.Stop(); err != nil {
			p.logger.Error().Err(err).Msg("mirror stop error")
		}
		p.mirror = nil
	}
	p.active = false
	return nil
}

// Service exposes the relay service.
func (p *RelayProvider) Service() *service.Service { return p.service }
