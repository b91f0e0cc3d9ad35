package rest

import "github.com/gofiber/fiber/v2"

type PingHandler interface {
	Ping(c *fiber.Ctx) error
}

type pingHandler struct{}

func NewPingHandler() PingHandler {
	return &pingHandler{}
}

func (that *pingHandler) Ping(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("pong")
}
