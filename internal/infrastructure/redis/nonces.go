package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NonceStore reserves replay-protection keys with SET NX and a TTL.
type NonceStore struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func NewNonceStore(client *redis.Client, ttl time.Duration) *NonceStore {
	return &NonceStore{Client: client, TTL: ttl, Prefix: "registry:nonce:"}
}

func (s *NonceStore) TryReserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.Client.SetNX(ctx, s.Prefix+key, "1", s.TTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
