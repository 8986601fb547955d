package presence

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const (
	onlineUsersKey      = "online_users"
	statusChangeChannel = "online_status"
)

// RedisRegistry backs the Registry interface with a shared redis
// instance. The gateway adds and removes members; we read and publish.
type RedisRegistry struct {
	client *redis.Client
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func (r *RedisRegistry) Online(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, onlineUsersKey).Result()
}

func (r *RedisRegistry) NotifyChange(ctx context.Context) {
	if err := r.client.Publish(ctx, statusChangeChannel, "update").Err(); err != nil {
		slog.WarnContext(ctx, "presence notify failed", "error", err)
	}
}
