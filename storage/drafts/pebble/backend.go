package pebbledrafts

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-studio/core/draft"
)

var nowFunc = time.Now // mockable

// header: expiresAt (unix nanos, big endian; 0 = never)
const headerLen = 8

// Backend keeps drafts on local disk, so they survive API restarts.
// Expired drafts are dropped lazily on access.
type Backend struct {
	db *pebble.DB
}

var _ draft.Backend = (*Backend)(nil) // interface compliance check

func Open(dir string) (*Backend, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening pebble at %s", dir)
	}
	return &Backend{db: db}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, closer, err := b.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = closer.Close() }()

	if len(raw) < headerLen {
		// self-heal: drop unexpected entry shape
		return nil, false, b.db.Delete([]byte(key), pebble.Sync)
	}
	if exp := int64(binary.BigEndian.Uint64(raw[:headerLen])); exp != 0 && nowFunc().UnixNano() >= exp {
		return nil, false, b.db.Delete([]byte(key), pebble.Sync)
	}

	// raw is only valid until closer.Close()
	out := make([]byte, len(raw)-headerLen)
	copy(out, raw[headerLen:])
	return out, true, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = nowFunc().Add(ttl).UnixNano()
	}
	buf := make([]byte, headerLen+len(value))
	binary.BigEndian.PutUint64(buf[:headerLen], uint64(exp))
	copy(buf[headerLen:], value)
	return b.db.Set([]byte(key), buf, pebble.Sync)
}

func (b *Backend) Del(_ context.Context, key string) error {
	return b.db.Delete([]byte(key), pebble.Sync)
}

func (b *Backend) Close(_ context.Context) error {
	return b.db.Close()
}
