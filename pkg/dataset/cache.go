package dataset

import (
	"sync"

	"surrobench/pkg/core"
	"surrobench/pkg/norm"
)

// CachedLoader memoizes split loads. Every task in a run reads the same
// train and test splits, so decoding the files once is enough. Loads are
// safe from concurrent workers, and each caller gets its own deep copy so
// no task can alias another's data.
type CachedLoader struct {
	Inner core.DatasetLoader

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	series core.Series
	params norm.Params
}

// NewCachedLoader wraps inner with an in-memory split cache.
func NewCachedLoader(inner core.DatasetLoader) *CachedLoader {
	return &CachedLoader{
		Inner:   inner,
		entries: make(map[string]cacheEntry),
	}
}

// Load returns the cached split when present, delegating to the inner
// loader on first use. Errors are not cached.
func (c *CachedLoader) Load(name, split string) (core.Series, norm.Params, error) {
	key := name + "\x00" + split

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return entry.series.Clone(), entry.params, nil
	}

	series, params, err := c.Inner.Load(name, split)
	if err != nil {
		return core.Series{}, norm.Params{}, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{series: series.Clone(), params: params}
	c.mu.Unlock()

	return series, params, nil
}
