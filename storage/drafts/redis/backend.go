package redisdrafts

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-studio/core/draft"
)

var ErrNilClient = errors.New("redis drafts: nil client")

// Backend keeps drafts in redis, shared by every API instance.
type Backend struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ draft.Backend = (*Backend)(nil) // interface compliance check

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set only if the backend exclusively owns the client
}

func New(cfg Config) (*Backend, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Backend{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Dial connects to a single redis server and owns the client.
func Dial(ctx context.Context, addr, password string, db int) (*Backend, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return New(Config{Client: client, CloseClient: true})
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return b.rdb.Set(ctx, key, value, ttl).Err()
}

func (b *Backend) Del(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, key).Err()
}

// Close releases the client only when the backend owns it.
func (b *Backend) Close(context.Context) error {
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
