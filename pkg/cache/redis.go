package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/course-admin/pkg/config"
)

// NewRedis connects to the course list cache. The client is closed again when the
// server does not answer within ctx.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
