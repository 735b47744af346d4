package mappings

import (
	"context"
	"time"

	"github.com/anistark/crunchythread/internal/searchutil"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultCacheTTL  = 24 * time.Hour
	DefaultCacheSize = 512
)

// Lookup is the store behind the cache.
type Lookup interface {
	CommunitiesFor(ctx context.Context, title string) ([]string, error)
}

// CachedLookup memoizes title → communities answers. Empty answers are
// cached too so unmapped shows do not hit the store on every page view.
type CachedLookup struct {
	next  Lookup
	cache *expirable.LRU[string, []string]
}

func NewCachedLookup(next Lookup, size int, ttl time.Duration) *CachedLookup {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedLookup{
		next:  next,
		cache: expirable.NewLRU[string, []string](size, nil, ttl),
	}
}

func (c *CachedLookup) CommunitiesFor(ctx context.Context, title string) ([]string, error) {
	key := searchutil.Normalize(title)
	if key == "" {
		return []string{}, nil
	}
	if communities, ok := c.cache.Get(key); ok {
		return append([]string(nil), communities...), nil
	}

	communities, err := c.next.CommunitiesFor(ctx, title)
	if err != nil {
		return nil, err
	}
	if communities == nil {
		communities = []string{}
	}
	c.cache.Add(key, append([]string(nil), communities...))
	return communities, nil
}

// Purge drops every cached answer, used after the store changes.
func (c *CachedLookup) Purge() {
	c.cache.Purge()
}

func (c *CachedLookup) Len() int {
	return c.cache.Len()
}
