package redisstore

import (
	"context"
	"errors"

	"price-registry/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "registry:"

type pipeKey struct{}

// Store keeps each record field under registry:<tag>:<pair>.
type Store struct {
	Client *redis.Client
	Log    *zap.Logger
}

func New(client *redis.Client, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{Client: client, Log: log}
}

func redisKey(k domain.Key) string { return keyPrefix + k.String() }

func (s *Store) Get(ctx context.Context, key domain.Key) (string, bool, error) {
	v, err := s.Client.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		s.Log.Warn("redis.get_failed", zap.String("key", redisKey(key)), zap.Error(err))
		return "", false, err
	}
	return v, true, nil
}

// GetMany reads all keys with a single MGET, which Redis executes atomically.
func (s *Store) GetMany(ctx context.Context, keys ...domain.Key) (map[domain.Key]string, error) {
	out := make(map[domain.Key]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = redisKey(k)
	}
	vals, err := s.Client.MGet(ctx, names...).Result()
	if err != nil {
		s.Log.Warn("redis.mget_failed", zap.Strings("keys", names), zap.Error(err))
		return nil, err
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[keys[i]] = str
		}
	}
	return out, nil
}

// Set queues the write on the unit-of-work pipeline when one is on the context.
func (s *Store) Set(ctx context.Context, key domain.Key, value string) error {
	if pipe := pipeFromCtx(ctx); pipe != nil {
		pipe.Set(ctx, redisKey(key), value, 0)
		return nil
	}
	return s.Client.Set(ctx, redisKey(key), value, 0).Err()
}

func (s *Store) Ping(ctx context.Context) error { return s.Client.Ping(ctx).Err() }

// UnitOfWork wraps the callback's writes in MULTI/EXEC. Reads inside the callback
// do not observe the queued writes.
type UnitOfWork struct {
	Client *redis.Client
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	pipe := u.Client.TxPipeline()
	if err := fn(context.WithValue(ctx, pipeKey{}, pipe)); err != nil {
		pipe.Discard()
		return err
	}
	_, err := pipe.Exec(ctx)
	return err
}

func pipeFromCtx(ctx context.Context) redis.Pipeliner {
	if v, ok := ctx.Value(pipeKey{}).(redis.Pipeliner); ok {
		return v
	}
	return nil
}
