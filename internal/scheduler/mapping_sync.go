package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anistark/crunchythread/internal/mappings"
	"github.com/anistark/crunchythread/internal/metrics"
	"github.com/anistark/crunchythread/internal/models"
)

type mappingStore interface {
	Upsert(mapping models.CommunityMapping) error
	PruneFileMappings(titles []string) (int, error)
}

type cachePurger interface {
	Purge()
}

type SyncResult struct {
	Loaded   int `json:"loaded"`
	Upserted int `json:"upserted"`
	Failed   int `json:"failed"`
	Removed  int `json:"removed"`
}

// MappingSync mirrors the YAML mapping files into the store: enabled entries
// are upserted, file-owned shows that are gone or disabled are removed, and
// cached lookups are dropped so edits take effect without a restart.
type MappingSync struct {
	dir      string
	load     func(dir string) ([]mappings.Entry, error)
	store    mappingStore
	cache    cachePurger
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
}

type MappingSyncConfig struct {
	Dir      string
	Interval time.Duration
}

func NewMappingSync(store mappingStore, cache cachePurger, cfg MappingSyncConfig, logger *slog.Logger) *MappingSync {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MappingSync{
		dir:      cfg.Dir,
		load:     mappings.LoadFromDir,
		store:    store,
		cache:    cache,
		interval: cfg.Interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (s *MappingSync) Start(ctx context.Context) {
	s.logger.Info("mapping sync started", "interval", s.interval.String(), "dir", s.dir)
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Warn("mapping sync initial run failed", "error", err)
		}
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("mapping sync stopped")
				close(s.stopCh)
				return
			case <-ticker.C:
				if _, err := s.RunOnce(ctx); err != nil {
					s.logger.Warn("mapping sync cycle failed", "error", err)
				}
			}
		}
	}()
}

func (s *MappingSync) StopWait(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-s.stopCh:
	case <-time.After(timeout):
	}
}

// RunOnce upserts every valid entry even when some files are broken; the
// load error is still returned so callers can report it. Removal only runs
// after a clean load.
func (s *MappingSync) RunOnce(ctx context.Context) (SyncResult, error) {
	entries, loadErr := s.load(s.dir)
	result := SyncResult{Loaded: len(entries)}

	titles := make([]string, 0, len(entries))
	for _, entry := range entries {
		titles = append(titles, entry.Title)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		mapping := models.CommunityMapping{
			Title:       entry.Title,
			Aliases:     entry.Aliases,
			Communities: entry.Communities,
		}
		if err := s.store.Upsert(mapping); err != nil {
			result.Failed++
			s.logger.Warn("mapping upsert failed", "title", entry.Title, "error", err)
			continue
		}
		result.Upserted++
	}

	var pruneErr error
	if loadErr == nil && ctx.Err() == nil {
		result.Removed, pruneErr = s.store.PruneFileMappings(titles)
		if pruneErr != nil {
			s.logger.Warn("mapping prune failed", "error", pruneErr)
		}
	}

	if (result.Upserted > 0 || result.Removed > 0) && s.cache != nil {
		s.cache.Purge()
	}

	s.logger.Info("mapping sync finished", "loaded", result.Loaded, "upserted", result.Upserted, "removed", result.Removed, "failed", result.Failed)

	switch {
	case loadErr != nil:
		metrics.MappingSyncs.WithLabelValues("partial").Inc()
		return result, fmt.Errorf("load mappings: %w", loadErr)
	case ctx.Err() != nil:
		metrics.MappingSyncs.WithLabelValues("cancelled").Inc()
		return result, ctx.Err()
	case pruneErr != nil:
		metrics.MappingSyncs.WithLabelValues("partial").Inc()
		return result, fmt.Errorf("prune mappings: %w", pruneErr)
	case result.Failed > 0:
		metrics.MappingSyncs.WithLabelValues("partial").Inc()
		return result, fmt.Errorf("%d mappings failed to store", result.Failed)
	default:
		metrics.MappingSyncs.WithLabelValues("ok").Inc()
		return result, nil
	}
}
