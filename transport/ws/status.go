package ws

import (
	"github.com/gofiber/fiber/v2"

	"relay-lab/observability"
	"relay-lab/relay"
)

// StatusHandler is the synchronous, read-only status surface.
type StatusHandler struct {
	engine *relay.Engine
}

func NewStatusHandler(engine *relay.Engine) *StatusHandler {
	return &StatusHandler{engine: engine}
}

func (s *StatusHandler) Handle(c *fiber.Ctx) error {
	body := fiber.Map{
		"message":  "Real-time Chat Server",
		"status":   "running",
		"stats":    s.engine.Stats(),
		"counters": s.engine.Metrics().Snapshot(),
	}
	if usage, err := observability.SelfUsage(); err == nil {
		body["system"] = usage
	}
	return c.JSON(body)
}
