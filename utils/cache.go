// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"salonai/config"

	"github.com/go-redis/redis/v8"
)

// NewSessionCacheClient builds the Redis client backing persisted client state
// and checks it answers a ping.
func NewSessionCacheClient(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (session): %w", err)
	}
	return client, nil
}
