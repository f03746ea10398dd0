package utils

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthStatus represents current status of the services the client talks to.
type HealthStatus struct {
	API       bool      `json:"api"`
	Redis     *bool     `json:"redis,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every checked dependency answered.
func (h HealthStatus) Healthy() bool {
	if h.Redis != nil && !*h.Redis {
		return false
	}
	return h.API
}

// CheckHealth pings the backend and, when configured, the session Redis.
func CheckHealth(ctx context.Context, apiPing func(context.Context) error, redisClient *redis.Client) HealthStatus {
	status := HealthStatus{CheckedAt: time.Now()}

	if err := apiPing(ctx); err != nil {
		status.Detail = err.Error()
	} else {
		status.API = true
	}

	if redisClient != nil {
		ok := redisClient.Ping(ctx).Err() == nil
		status.Redis = &ok
	}
	return status
}
