package pypi

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/git-pkgs/pkgversions/internal/core"
)

// DefaultCacheSize is the number of timelines a CachedIndex keeps.
const DefaultCacheSize = 128

type cacheKey struct {
	name       string
	onlyStable bool
}

// CachedIndex memoizes timelines by package name and stability flag.
// Failed fetches are not cached.
type CachedIndex struct {
	next  core.TimelineFetcher
	cache *lru.Cache[cacheKey, *core.ReleaseTimeline]
}

// NewCachedIndex wraps next with an LRU cache holding up to size timelines.
func NewCachedIndex(next core.TimelineFetcher, size int) (*CachedIndex, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, *core.ReleaseTimeline](size)
	if err != nil {
		return nil, err
	}
	return &CachedIndex{next: next, cache: cache}, nil
}

func (c *CachedIndex) FetchTimeline(ctx context.Context, name string, onlyStable bool) (*core.ReleaseTimeline, error) {
	key := cacheKey{name: name, onlyStable: onlyStable}
	if timeline, ok := c.cache.Get(key); ok {
		return timeline, nil
	}

	timeline, err := c.next.FetchTimeline(ctx, name, onlyStable)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, timeline)
	return timeline, nil
}

// Len reports how many timelines are cached.
func (c *CachedIndex) Len() int {
	return c.cache.Len()
}

// Purge empties the cache.
func (c *CachedIndex) Purge() {
	c.cache.Purge()
}
