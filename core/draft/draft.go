// Package draft persists in-progress authoring forms so editing can resume after a reload.
//
// Store is the typed port the app talks to; Backend is the byte store behind it
// (in-memory, bigcache, redis or pebble, see storage/drafts).
package draft

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/trezcool/masomo-studio/core/content"
)

var (
	// errors
	ErrEmptyKey = errors.New("draft key is empty")
)

// Backend is a byte store with TTLs. It must be safe for concurrent use and return
// exactly the bytes it was given.
type Backend interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value; ttl <= 0 means no expiry. Backends without per-key TTLs may ignore it.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close(ctx context.Context) error
}

// Store saves and loads values of type T under namespaced keys.
type Store[T any] struct {
	backend Backend
	ns      string
	ttl     time.Duration
}

func NewStore[T any](backend Backend, namespace string, ttl time.Duration) *Store[T] {
	return &Store[T]{backend: backend, ns: namespace, ttl: ttl}
}

func (s *Store[T]) storageKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	return "draft:" + s.ns + ":" + key, nil
}

// Load returns the value saved under `key`, or `def` if there is none.
func (s *Store[T]) Load(ctx context.Context, key string, def T) (T, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// Get is like Load but reports whether the value exists.
func (s *Store[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var v T
	sk, err := s.storageKey(key)
	if err != nil {
		return v, false, err
	}
	data, ok, err := s.backend.Get(ctx, sk)
	if err != nil {
		return v, false, errors.Wrap(err, "getting draft")
	}
	if !ok {
		return v, false, nil
	}
	if err = msgpack.Unmarshal(data, &v); err != nil {
		return v, false, errors.Wrap(err, "decoding draft")
	}
	return v, true, nil
}

func (s *Store[T]) Save(ctx context.Context, key string, value T) error {
	sk, err := s.storageKey(key)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encoding draft")
	}
	if err = s.backend.Set(ctx, sk, data, s.ttl); err != nil {
		return errors.Wrap(err, "saving draft")
	}
	return nil
}

func (s *Store[T]) Delete(ctx context.Context, key string) error {
	sk, err := s.storageKey(key)
	if err != nil {
		return err
	}
	return errors.Wrap(s.backend.Del(ctx, sk), "deleting draft")
}

// NewKey returns a fresh random draft key.
func NewKey() string {
	return uuid.New().String()
}

// Form is the in-progress state of the explanation authoring form.
type Form struct {
	Title     string          `json:"title" msgpack:"title"`
	Kind      content.Kind    `json:"kind" msgpack:"kind"`
	Equation  string          `json:"equation,omitempty" msgpack:"equation,omitempty"`
	Blocks    []content.Block `json:"blocks" msgpack:"blocks"`
	UpdatedAt time.Time       `json:"updated_at" msgpack:"updated_at"` // UTC
}
