// Package app builds the object graph shared by the API server and threadctl.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/anistark/crunchythread/internal/config"
	"github.com/anistark/crunchythread/internal/database"
	"github.com/anistark/crunchythread/internal/detect"
	detectdefaults "github.com/anistark/crunchythread/internal/detect/defaults"
	"github.com/anistark/crunchythread/internal/mappings"
	"github.com/anistark/crunchythread/internal/messaging"
	"github.com/anistark/crunchythread/internal/notifications"
	"github.com/anistark/crunchythread/internal/pages"
	"github.com/anistark/crunchythread/internal/repository"
	"github.com/anistark/crunchythread/internal/scheduler"
	"github.com/anistark/crunchythread/internal/search/reddit"
	"github.com/anistark/crunchythread/internal/threads"
)

type App struct {
	Config       config.Config
	Logger       *slog.Logger
	DB           *sql.DB
	Registry     *detect.Registry
	Reddit       *reddit.Client
	Communities  *repository.CommunityRepository
	Lookup       *mappings.CachedLookup
	Orchestrator *threads.Orchestrator
	Finder       *threads.Finder
	Detector     *pages.Detector
	Messages     *messaging.Router
	MappingSync  *scheduler.MappingSync
}

// New opens the store and wires every component from cfg.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	if err := database.ApplyMigrations(db, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	if cfg.SeedDefaultData {
		if err := database.SeedDefaults(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed defaults: %w", err)
		}
	}

	return Wire(cfg, db, logger), nil
}

// Wire builds the components on top of an already migrated database.
func Wire(cfg config.Config, db *sql.DB, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	registry := detectdefaults.NewRegistry()

	redditClient := reddit.NewClientWithOptions(reddit.Options{
		BaseURL:           cfg.RedditBaseURL,
		UserAgent:         cfg.UserAgent,
		RequestsPerMinute: cfg.SourceRequestsPerMinute,
		Logger:            logger,
	})

	communities := repository.NewCommunityRepository(db)
	lookup := mappings.NewCachedLookup(communities, cfg.MappingCacheSize, cfg.MappingCacheTTL)

	orchestrator := threads.NewOrchestrator(redditClient, lookup, threads.Options{
		Timeout:     cfg.SourceTimeout,
		Concurrency: cfg.SourceConcurrency,
	}, logger)
	finder := threads.NewFinder(orchestrator)

	publisher := notifications.NewPublisher(notifications.FromURL(cfg.PushWebhookURL), 0, logger)
	fetcher := pages.NewFetcher(pages.Options{Timeout: cfg.PageFetchTimeout})
	detector := pages.NewDetector(registry, fetcher, publisher, logger)

	mappingSync := scheduler.NewMappingSync(communities, lookup, scheduler.MappingSyncConfig{
		Dir:      cfg.MappingsPath,
		Interval: time.Duration(cfg.MappingSyncMinutes) * time.Minute,
	}, logger)

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Registry:     registry,
		Reddit:       redditClient,
		Communities:  communities,
		Lookup:       lookup,
		Orchestrator: orchestrator,
		Finder:       finder,
		Detector:     detector,
		Messages:     messaging.NewDefaultRouter(detector, finder, logger),
		MappingSync:  mappingSync,
	}
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
