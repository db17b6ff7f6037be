package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	badgeKey     = "trackerd:badge_count"
	eventChannel = "EVENT_JOB_TRACKED"
)

// Redis keeps the badge count in a Redis counter and publishes notification
// events on a pub/sub channel the extension popup subscribes to.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) JobTracked(ctx context.Context) (int64, error) {
	n, err := r.rdb.Incr(ctx, badgeKey).Result()
	if err != nil {
		return 0, fmt.Errorf("incr badge count: %w", err)
	}
	return n, nil
}

func (r *Redis) TrackedCount(ctx context.Context) (int64, error) {
	n, err := r.rdb.Get(ctx, badgeKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get badge count: %w", err)
	}
	return n, nil
}

func (r *Redis) Publish(ctx context.Context, ev Event) error {
	if ev.Type == "" {
		ev.Type = eventChannel
	}
	payload, _ := json.Marshal(ev)
	if err := r.rdb.Publish(ctx, eventChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", eventChannel, err)
	}
	return nil
}
