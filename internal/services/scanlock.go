package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanLockKey = "reminder_scan_lock"

// ScanLock serializes overlapping scans (HTTP-triggered or cron-triggered)
// with a redis SETNX lease. The TTL bounds how long a crashed scan can block
// the next one.
type ScanLock struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewScanLock(redisClient *redis.Client, ttl time.Duration) *ScanLock {
	return &ScanLock{redis: redisClient, ttl: ttl}
}

func (l *ScanLock) Acquire(ctx context.Context) (bool, error) {
	return l.redis.SetNX(ctx, scanLockKey, "1", l.ttl).Result()
}

func (l *ScanLock) Release(ctx context.Context) {
	l.redis.Del(ctx, scanLockKey)
}
