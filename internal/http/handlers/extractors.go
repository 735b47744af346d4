package handlers

import (
	"github.com/anistark/crunchythread/internal/detect"
	"github.com/gofiber/fiber/v2"
)

type ExtractorsHandler struct {
	registry *detect.Registry
}

func NewExtractorsHandler(registry *detect.Registry) *ExtractorsHandler {
	return &ExtractorsHandler{registry: registry}
}

func (h *ExtractorsHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.registry.List()})
}
