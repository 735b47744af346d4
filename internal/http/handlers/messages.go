package handlers

import (
	"github.com/anistark/crunchythread/internal/messaging"
	"github.com/gofiber/fiber/v2"
)

type MessagesHandler struct {
	router *messaging.Router
}

func NewMessagesHandler(router *messaging.Router) *MessagesHandler {
	return &MessagesHandler{router: router}
}

func (h *MessagesHandler) Dispatch(c *fiber.Ctx) error {
	var req messaging.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}

	return c.JSON(h.router.Dispatch(c.UserContext(), req))
}
