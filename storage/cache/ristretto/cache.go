// Package ristrettocache keeps decoded blocks in memory, keyed by a hash of their columns.
package ristrettocache

import (
	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-studio/core/content"
	"github.com/trezcool/masomo-studio/core/explanation"
)

type Config struct {
	NumCounters int64 // ~10x the expected number of entries
	MaxCost     int64 // bytes
}

type Cache struct {
	c *ristretto.Cache
}

var _ explanation.BlockCache = (*Cache)(nil)

func New(cfg Config) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating block cache")
	}
	return &Cache{c: c}, nil
}

func (c *Cache) Get(key uint64) (explanation.CachedBlocks, bool) {
	v, ok := c.c.Get(key)
	if !ok {
		return explanation.CachedBlocks{}, false
	}
	e, ok := v.(explanation.CachedBlocks)
	if !ok {
		return explanation.CachedBlocks{}, false
	}
	e.Blocks = cloneBlocks(e.Blocks)
	return e, true
}

// Set is best effort: ristretto may drop the entry under contention or when it does not fit.
func (c *Cache) Set(key uint64, e explanation.CachedBlocks) {
	e.Blocks = cloneBlocks(e.Blocks)
	c.c.Set(key, e, cost(e))
}

// Wait blocks until pending Sets are applied.
func (c *Cache) Wait() { c.c.Wait() }

func (c *Cache) Close() { c.c.Close() }

func cost(e explanation.CachedBlocks) int64 {
	n := int64(1 + len(e.Columns.Code) + len(e.Columns.Explanation))
	for _, b := range e.Blocks {
		n += int64(len(b.Code) + len(b.Explanation) + len(b.Language))
	}
	return n
}

func cloneBlocks(blocks []content.Block) []content.Block {
	out := make([]content.Block, len(blocks))
	copy(out, blocks)
	return out
}
