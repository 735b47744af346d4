package threads

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anistark/crunchythread/internal/search"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout     = 5 * time.Second
	defaultConcurrency = 4
)

// CommunityLookup resolves a show title to the communities that discuss it.
type CommunityLookup interface {
	CommunitiesFor(ctx context.Context, title string) ([]string, error)
}

// LookupFunc adapts a plain title → communities function.
type LookupFunc func(title string) []string

func (f LookupFunc) CommunitiesFor(_ context.Context, title string) ([]string, error) {
	return f(title), nil
}

type Query struct {
	Title   string
	Episode *int
}

func (q Query) String() string {
	if q.Episode != nil {
		return fmt.Sprintf("%s: Episode %d", q.Title, *q.Episode)
	}
	return q.Title
}

type Options struct {
	// Timeout bounds each community call on its own.
	Timeout     time.Duration
	Concurrency int
}

type Orchestrator struct {
	client      search.Client
	lookup      CommunityLookup
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
}

func NewOrchestrator(client search.Client, lookup CommunityLookup, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		client:      client,
		lookup:      lookup,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		logger:      logger,
	}
}

// Search asks every community mapped to title and concatenates what the
// healthy ones return. It never fails: a broken community contributes
// nothing, and anything worse yields an empty result.
func (o *Orchestrator) Search(ctx context.Context, title string, episode *int) (results []search.Thread) {
	defer func() {
		if recovered := recover(); recovered != nil {
			o.logger.Error("thread search panicked", "title", title, "panic", recovered)
			results = []search.Thread{}
		}
	}()

	title = strings.TrimSpace(title)
	if title == "" {
		return []search.Thread{}
	}

	communities, err := o.lookup.CommunitiesFor(ctx, title)
	if err != nil {
		o.logger.Warn("community lookup failed", "title", title, "error", err)
		return []search.Thread{}
	}
	if len(communities) == 0 {
		o.logger.Debug("no communities mapped", "title", title)
		return []search.Thread{}
	}

	query := Query{Title: title, Episode: episode}.String()
	perCommunity := make([][]search.Thread, len(communities))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.concurrency)
	for index, community := range communities {
		group.Go(func() error {
			perCommunity[index] = o.searchCommunity(groupCtx, community, query)
			return nil
		})
	}
	_ = group.Wait()

	total := 0
	for _, items := range perCommunity {
		total += len(items)
	}
	results = make([]search.Thread, 0, total)
	for _, items := range perCommunity {
		results = append(results, items...)
	}

	o.logger.Debug("thread search finished", "title", title, "query", query, "communities", len(communities), "threads", len(results))
	return results
}

func (o *Orchestrator) searchCommunity(ctx context.Context, community string, query string) (threads []search.Thread) {
	defer func() {
		if recovered := recover(); recovered != nil {
			o.logger.Error("community search panicked", "community", community, "panic", recovered)
			threads = nil
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	found, err := o.client.Search(callCtx, community, query)
	if err != nil {
		o.logger.Warn("community search failed", "community", community, "error", err)
		return nil
	}
	return found
}
