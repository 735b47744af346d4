package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

type SourceChecker interface {
	Key() string
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db      *sql.DB
	sources []SourceChecker
}

func NewHealthHandler(db *sql.DB, sources ...SourceChecker) *HealthHandler {
	return &HealthHandler{db: db, sources: sources}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.db.Ping(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"db":     "down",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"db":     "up",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type sourceHealth struct {
	Key     string `json:"key"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Sources probes the discussion platforms. A down source only degrades
// search, so this always answers 200.
func (h *HealthHandler) Sources(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	items := make([]sourceHealth, 0, len(h.sources))
	for _, source := range h.sources {
		item := sourceHealth{Key: source.Key(), Healthy: true}
		if err := source.HealthCheck(ctx); err != nil {
			item.Healthy = false
			item.Error = err.Error()
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"items": items})
}
