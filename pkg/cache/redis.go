package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Option 调整 redis.Options
type Option func(*redis.Options)

func WithPassword(password string) Option {
	return func(o *redis.Options) { o.Password = password }
}

func WithDB(db int) Option {
	return func(o *redis.Options) { o.DB = db }
}

func WithPoolSize(size int) Option {
	return func(o *redis.Options) { o.PoolSize = size }
}

// NewRedisClient 创建客户端并探活
func NewRedisClient(ctx context.Context, addr string, opts ...Option) (*redis.Client, error) {
	o := &redis.Options{Addr: addr}
	for _, opt := range opts {
		opt(o)
	}
	client := redis.NewClient(o)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
