package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients bundles the two connections the service needs: one for the
// expansion job queue (blocking pops) and one for short-lived locks, so a
// blocked BLPop never delays a lock acquisition.
type RedisClients struct {
	Queue *redis.Client
	Locks *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	queueClient := redis.NewClient(opt)
	if err := queueClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis (queue): %w", err)
	}

	lockOpt := *opt
	lockClient := redis.NewClient(&lockOpt)
	if err := lockClient.Ping(ctx).Err(); err != nil {
		queueClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (locks): %w", err)
	}

	return &RedisClients{
		Queue: queueClient,
		Locks: lockClient,
	}, nil
}

func (r *RedisClients) Close() {
	r.Queue.Close()
	r.Locks.Close()
}
