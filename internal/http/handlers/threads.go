package handlers

import (
	"github.com/anistark/crunchythread/internal/messaging"
	"github.com/gofiber/fiber/v2"
)

type ThreadsHandler struct {
	finder messaging.ThreadFinder
}

func NewThreadsHandler(finder messaging.ThreadFinder) *ThreadsHandler {
	return &ThreadsHandler{finder: finder}
}

// Search never fails at the transport level once the body is readable;
// "nothing found" is an empty list.
func (h *ThreadsHandler) Search(c *fiber.Ctx) error {
	var req messaging.SearchPayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}

	return c.JSON(messaging.SearchThreads(c.UserContext(), h.finder, req))
}

