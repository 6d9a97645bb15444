package engine

import (
	"fmt"

	"payrollpie/internal/models"

	"github.com/dgraph-io/ristretto"
)

type CacheConfig struct {
	NumCounters int64
	MaxCost     int64
}

// CachedStore memoises per-year summaries. The table is immutable, so an
// entry never goes stale; eviction only bounds memory.
type CachedStore struct {
	store *ColumnStore
	cache *ristretto.Cache
}

func NewCachedStore(store *ColumnStore, cfg CacheConfig) (*CachedStore, error) {
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 1000
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = 10000
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create aggregate cache: %w", err)
	}
	return &CachedStore{store: store, cache: cache}, nil
}

func (c *CachedStore) Aggregate(year int) models.Summary {
	if v, ok := c.cache.Get(year); ok {
		return cloneSummary(v.(models.Summary))
	}
	s := c.store.Aggregate(year)
	c.cache.Set(year, cloneSummary(s), int64(len(s.Regions))+1)
	return s
}

func (c *CachedStore) DistinctYears() []int { return c.store.DistinctYears() }

func (c *CachedStore) Store() *ColumnStore { return c.store }

// Wait blocks until pending cache writes are applied.
func (c *CachedStore) Wait() { c.cache.Wait() }

func (c *CachedStore) Close() { c.cache.Close() }

func cloneSummary(s models.Summary) models.Summary {
	regions := make([]models.RegionAggregate, len(s.Regions))
	copy(regions, s.Regions)
	s.Regions = regions
	return s
}
