package snapshot

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/redis"
)

// RedisStorage keeps items in Redis under a common key prefix.
type RedisStorage struct {
	client *redis.Redis
	prefix string
}

var _ Storage = (*RedisStorage)(nil)

type RedisOptions struct {
	Host   string
	Pass   string
	TLS    bool
	Prefix string
}

func NewRedisStorage(opts RedisOptions) (*RedisStorage, error) {
	client, err := redis.NewRedis(redis.RedisConf{
		Host:     opts.Host,
		Type:     redis.NodeType,
		Pass:     opts.Pass,
		Tls:      opts.TLS,
		NonBlock: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", opts.Host, err)
	}
	return &RedisStorage{client: client, prefix: opts.Prefix}, nil
}

func (s *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.GetCtx(ctx, s.prefix+key)
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	// Stored snapshots are never empty, so "" is a miss.
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func (s *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.SetCtx(ctx, s.prefix+key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.client.DelCtx(ctx, s.prefix+key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
