package pages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anistark/crunchythread/internal/detect"
	"github.com/anistark/crunchythread/internal/metrics"
	"github.com/anistark/crunchythread/internal/notifications"
)

type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*detect.Page, error)
}

type Pusher interface {
	Publish(action string, payload any) <-chan struct{}
}

// Detector runs the registry over a page the caller supplies or that is
// fetched on its behalf, and pushes every found signal to listeners.
type Detector struct {
	registry *detect.Registry
	fetcher  PageFetcher
	pusher   Pusher
	logger   *slog.Logger
}

func NewDetector(registry *detect.Registry, fetcher PageFetcher, pusher Pusher, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{registry: registry, fetcher: fetcher, pusher: pusher, logger: logger}
}

// Detect returns a nil signal, not an error, when the page names no show.
// Errors are reserved for addresses that cannot be read at all.
func (d *Detector) Detect(ctx context.Context, rawURL string, html string) (*detect.Signal, error) {
	page, err := d.page(ctx, rawURL, html)
	if err != nil {
		metrics.Detections.WithLabelValues("none", "error").Inc()
		return nil, err
	}

	signal, extractorKey := d.registry.Detect(page)
	if signal == nil {
		metrics.Detections.WithLabelValues(extractorKey, "empty").Inc()
		d.logger.Debug("no show detected", "url", page.URL.String(), "extractor", extractorKey)
		return nil, nil
	}

	metrics.Detections.WithLabelValues(extractorKey, "found").Inc()
	d.logger.Debug("show detected", "url", page.URL.String(), "extractor", extractorKey, "title", signal.Title)
	if d.pusher != nil {
		d.pusher.Publish(notifications.ActionAnimeData, signal)
	}
	return signal, nil
}

func (d *Detector) page(ctx context.Context, rawURL string, html string) (*detect.Page, error) {
	if strings.TrimSpace(html) == "" {
		if d.fetcher == nil {
			return nil, fmt.Errorf("html is required")
		}
		page, err := d.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("fetch page: %w", err)
		}
		return page, nil
	}

	pageURL, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &detect.Page{URL: pageURL, Doc: doc}, nil
}
