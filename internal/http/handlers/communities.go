package handlers

import (
	"context"
	"strings"

	"github.com/anistark/crunchythread/internal/models"
	"github.com/gofiber/fiber/v2"
)

type CommunityLookup interface {
	CommunitiesFor(ctx context.Context, title string) ([]string, error)
}

type MappingLister interface {
	List() ([]models.CommunityMapping, error)
}

type CommunitiesHandler struct {
	lookup CommunityLookup
	lister MappingLister
}

func NewCommunitiesHandler(lookup CommunityLookup, lister MappingLister) *CommunitiesHandler {
	return &CommunitiesHandler{lookup: lookup, lister: lister}
}

func (h *CommunitiesHandler) Lookup(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "title is required"})
	}

	communities, err := h.lookup.CommunitiesFor(c.UserContext(), title)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to look up communities"})
	}

	return c.JSON(fiber.Map{"title": title, "communities": communities})
}

func (h *CommunitiesHandler) List(c *fiber.Ctx) error {
	items, err := h.lister.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to list mappings"})
	}
	return c.JSON(fiber.Map{"items": items})
}
