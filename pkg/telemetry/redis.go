package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultTTL is how long a cached state outlives its robot.
const DefaultTTL = 24 * time.Hour

// StateKey is the Redis key holding a robot's latest snapshot.
func StateKey(bodyID string) string {
	return fmt.Sprintf("nao:state:%s", bodyID)
}

// Cache keeps the latest snapshot of each robot in Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to Redis at addr and checks the connection.
func NewCache(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("telemetry: connect to Redis: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: rdb, ttl: ttl}, nil
}

// Publish overwrites the robot's cached snapshot.
func (c *Cache) Publish(ctx context.Context, snap Snapshot) error {
	data, err := snap.Bytes()
	if err != nil {
		return fmt.Errorf("telemetry: encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, StateKey(snap.BodyID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("telemetry: save state to Redis: %w", err)
	}
	return nil
}

// Latest returns the cached snapshot for bodyID, or ErrNotFound.
func (c *Cache) Latest(ctx context.Context, bodyID string) (Snapshot, error) {
	val, err := c.client.Get(ctx, StateKey(bodyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, fmt.Errorf("%w for robot %s", ErrNotFound, bodyID)
		}
		return Snapshot{}, fmt.Errorf("telemetry: get state from Redis: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("telemetry: decode cached state: %w", err)
	}
	return snap, nil
}

// Forget removes the robot's cached snapshot.
func (c *Cache) Forget(ctx context.Context, bodyID string) error {
	return c.client.Del(ctx, StateKey(bodyID)).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
