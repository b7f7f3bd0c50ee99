package cache

import (
	"context"
	"time"

	"Reformly/storage/redis"
)

// 通过 SETNX 实现的分布式锁，用于同一会话的 google 登录互斥
const (
	lockPrefix = "lock"
)

// TryLock 获取锁，已被占用时返回 false
func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return redis.Client().SetNX(ctx, redis.Key(lockPrefix, key), 1, ttl).Result()
}

func Unlock(ctx context.Context, key string) error {
	return redis.Client().Del(ctx, redis.Key(lockPrefix, key)).Err()
}
