package http

import (
	"github.com/anistark/crunchythread/internal/app"
	"github.com/anistark/crunchythread/internal/http/handlers"
	"github.com/anistark/crunchythread/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func NewServer(a *app.App) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName: a.Config.AppName,
	})

	server.Use(recover.New())

	health := handlers.NewHealthHandler(a.DB, a.Reddit)
	extractors := handlers.NewExtractorsHandler(a.Registry)
	communities := handlers.NewCommunitiesHandler(a.Lookup, a.Communities)
	detection := handlers.NewDetectHandler(a.Detector)
	threadSearch := handlers.NewThreadsHandler(a.Finder)
	messages := handlers.NewMessagesHandler(a.Messages)

	server.Get("/health", health.Check)
	server.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	v1 := server.Group("/v1")
	v1.Get("/health", health.Check)
	v1.Get("/sources/health", health.Sources)
	v1.Get("/extractors", extractors.List)
	v1.Get("/communities", communities.Lookup)
	v1.Get("/mappings", communities.List)
	v1.Post("/detect", detection.Detect)
	v1.Post("/threads/search", threadSearch.Search)
	v1.Post("/messages", messages.Dispatch)

	return server
}
