package handlers

import (
	"strings"

	"github.com/anistark/crunchythread/internal/messaging"
	"github.com/gofiber/fiber/v2"
)

type DetectHandler struct {
	detector messaging.Detector
}

func NewDetectHandler(detector messaging.Detector) *DetectHandler {
	return &DetectHandler{detector: detector}
}

// Detect answers {"payload": signal|null}. An unreadable address is a
// client problem; a page without a show is a normal null payload.
func (h *DetectHandler) Detect(c *fiber.Ctx) error {
	var req messaging.DetectPayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}
	if strings.TrimSpace(req.URL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "url is required"})
	}

	signal, err := h.detector.Detect(c.UserContext(), req.URL, req.HTML)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(messaging.AnimeDataResponse{Payload: signal})
}
