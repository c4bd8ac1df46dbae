package inmemdrafts

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/masomo-studio/core/draft"
)

var nowFunc = time.Now // mockable

type entry struct {
	value     []byte
	expiresAt time.Time // zero: never
}

// Backend keeps drafts in-process. Expired entries are dropped lazily on access.
type Backend struct {
	sync.RWMutex
	table map[string]entry
}

var _ draft.Backend = (*Backend)(nil) // interface compliance check

func New() *Backend {
	return &Backend{table: make(map[string]entry)}
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.RLock()
	e, ok := b.table[key]
	b.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !nowFunc().Before(e.expiresAt) {
		b.Lock()
		if cur, ok := b.table[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(b.table, key)
		}
		b.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = nowFunc().Add(ttl)
	}

	b.Lock()
	defer b.Unlock()
	b.table[key] = e
	return nil
}

func (b *Backend) Del(_ context.Context, key string) error {
	b.Lock()
	defer b.Unlock()
	delete(b.table, key)
	return nil
}

func (b *Backend) Close(_ context.Context) error {
	b.Lock()
	defer b.Unlock()
	b.table = make(map[string]entry)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (b *Backend) Len() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.table)
}
