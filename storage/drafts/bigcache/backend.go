package bigcachedrafts

import (
	"context"
	"time"

	bc "github.com/allegro/bigcache/v3"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-studio/core/draft"
)

// Backend keeps drafts in an in-process bigcache.
// bigcache has no per-entry TTL: every draft lives for Config.LifeWindow.
type Backend struct {
	c *bc.BigCache
}

var _ draft.Backend = (*Backend)(nil) // interface compliance check

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntrySize       int
	HardMaxCacheSizeMB int // 0 = unlimited
}

func New(cfg Config) (*Backend, error) {
	if cfg.LifeWindow <= 0 {
		return nil, errors.New("bigcache drafts: life window must be positive")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, errors.Wrap(err, "creating bigcache")
	}
	return &Backend{c: c}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := b.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	return b.c.Set(key, value)
}

func (b *Backend) Del(_ context.Context, key string) error {
	if err := b.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

func (b *Backend) Close(_ context.Context) error {
	return b.c.Close()
}
