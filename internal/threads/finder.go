package threads

import (
	"context"

	"github.com/anistark/crunchythread/internal/metrics"
	"github.com/anistark/crunchythread/internal/ranking"
	"github.com/anistark/crunchythread/internal/search"
)

type Searcher interface {
	Search(ctx context.Context, title string, episode *int) []search.Thread
}

// Finder turns a title and episode into at most one thread.
type Finder struct {
	searcher Searcher
}

func NewFinder(searcher Searcher) *Finder {
	return &Finder{searcher: searcher}
}

func (f *Finder) Best(ctx context.Context, title string, episode *int) *search.Thread {
	best := ranking.Rank(f.searcher.Search(ctx, title, episode), episode)
	if best == nil {
		metrics.ThreadSelections.WithLabelValues("empty").Inc()
		return nil
	}
	metrics.ThreadSelections.WithLabelValues("found").Inc()
	return best
}
