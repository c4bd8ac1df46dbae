package pebbledrafts

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *Backend {
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	return b
}

func TestBackend(t *testing.T) {
	ctx := context.Background()
	b := open(t)

	_, ok, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, "k", []byte("value"), 0))
	got, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	require.NoError(t, b.Set(ctx, "empty", nil, 0))
	got, ok, err = b.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)

	require.NoError(t, b.Del(ctx, "k"))
	_, ok, _ = b.Get(ctx, "k")
	assert.False(t, ok)
}

func TestBackend_ttl(t *testing.T) {
	ctx := context.Background()
	b := open(t)

	now := time.Now()
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	require.NoError(t, b.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, b.Set(ctx, "forever", []byte("2"), 0))

	nowFunc = func() time.Time { return now.Add(2 * time.Minute) }

	_, ok, err := b.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
	got, ok, _ := b.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, []byte("2"), got)

	// expired entry was removed from disk
	_, _, err = b.db.Get([]byte("short"))
	assert.Equal(t, pebble.ErrNotFound, err)
}

func TestBackend_corruptEntry(t *testing.T) {
	ctx := context.Background()
	b := open(t)

	require.NoError(t, b.db.Set([]byte("bad"), []byte{1, 2}, pebble.Sync))
	_, ok, err := b.Get(ctx, "bad")
	require.NoError(t, err)
	assert.False(t, ok)
}
