package providers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/questline/relay/src/hub"
	"github.com/questline/relay/src/types"
	"github.com/valyala/fasthttp"
)

// RegisterRoutes registers the read-only status surface and announcements.
func (p *RelayProvider) RegisterRoutes(group fiber.Router) {
	group.Get("/ws/info", p.handleInfo)
	group.Get("/status", p.handleStatus)
	group.Get("/status/users", p.handleUsers)
	group.Get("/status/users/:userId", p.handleUserStatus)
	group.Get("/status/channels/:channelId", p.handleChannel)
	group.Post("/channels/:channelId/announce", p.handleAnnounce)
}

func (p *RelayProvider) handleInfo(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"websocket": true,
		"endpoint":  p.cfg.Path,
		"clients":   p.hub.ConnectionCount(),
		"channels":  len(p.hub.ActiveChannels()),
	})
}

func (p *RelayProvider) handleStatus(c fiber.Ctx) error {
	return c.JSON(p.service.Status())
}

func (p *RelayProvider) handleUsers(c fiber.Ctx) error {
	users := p.service.Users()
	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}

func (p *RelayProvider) handleUserStatus(c fiber.Ctx) error {
	return c.JSON(p.service.UserStatus(c.Params("userId")))
}

func (p *RelayProvider) handleChannel(c fiber.Ctx) error {
	channel := c.Params("channelId")
	members := p.service.ChannelMembers(channel)
	if members == nil {
		members = []string{}
	}
	return c.JSON(fiber.Map{"channelId": channel, "members": members, "count": len(members)})
}

func (p *RelayProvider) handleAnnounce(c fiber.Ctx) error {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_body",
			"message": err.Error(),
		})
	}

	channel := c.Params("channelId")
	if err := p.service.Announce(channel, body.Message); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, types.ErrHubStopped) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{"error": "announce_failed", "message": err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"published": true, "channel": channel})
}

// Handler returns the root fasthttp handler. Requests on the WebSocket path
// are upgraded; everything else is served by fiber.
func (p *RelayProvider) Handler() fasthttp.RequestHandler {
	app := p.app.Handler()
	return func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) == p.cfg.Path {
			p.handleUpgrade(ctx)
			return
		}
		app(ctx)
	}
}

func (p *RelayProvider) handleUpgrade(ctx *fasthttp.RequestCtx) {
	upgrade := string(ctx.Request.Header.Peek("Upgrade"))
	if !strings.EqualFold(upgrade, "websocket") {
		ctx.SetStatusCode(fasthttp.StatusUpgradeRequired)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"error":"upgrade_required","message":"WebSocket upgrade required"}`)
		return
	}

	clientID := uuid.New().String()
	h := p.hub
	cfg := p.cfg

	err := p.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		client := hub.NewClient(clientID, newFasthttpConn(conn, cfg), h, cfg.SendBufferSize)
		p.logger.Debug().Str("client_id", clientID).Msg("socket opened")
		go client.WritePump(cfg.PingInterval)
		client.ReadPump()
		p.logger.Debug().Str("client_id", clientID).Msg("socket closed")
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("websocket upgrade failed")
	}
}
