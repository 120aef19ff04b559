package config

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

// GetRedisLock returns nil when Redis is not configured.
func GetRedisLock() *redislock.Client {
	return locker
}

// ConnectRedis connects to addr and builds the lock client. An empty addr
// leaves Redis disabled.
func ConnectRedis(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       0,
		PoolSize: 20,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect redis at %s: %w", addr, err)
	}
	rdb = client
	locker = redislock.New(rdb)
	return nil
}

func CloseRedis() error {
	if rdb == nil {
		return nil
	}
	return rdb.Close()
}
