package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math/rand"
	"time"

	ri "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"Reformly/pkg/logger"
	"Reformly/storage/redis"
)

const (
	// 空值缓存标识
	emptyValueFlag = "__EMPTY__"
	emptyValueTTL  = 5 * time.Minute
	// 防雪崩随机延迟上限
	defaultJitter = 50 * time.Millisecond
)

// ProtectedCache 带空值保护、随机延迟和熔断的缓存包装器
type ProtectedCache struct {
	breaker   *CircuitBreaker
	keyPrefix string
	ttl       time.Duration
	emptyTTL  time.Duration
	jitter    time.Duration
}

func NewProtectedCache(keyPrefix string, ttl time.Duration) *ProtectedCache {
	return &ProtectedCache{
		breaker:   NewCircuitBreaker(keyPrefix, 5, 30*time.Second),
		keyPrefix: keyPrefix,
		ttl:       ttl,
		emptyTTL:  emptyValueTTL,
		jitter:    defaultJitter,
	}
}

// Set value 为 nil 时写入空值标识，使用较短 TTL
func (pc *ProtectedCache) Set(ctx context.Context, key string, value interface{}) error {
	data := emptyValueFlag
	ttl := pc.emptyTTL

	if value != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal cache value: %w", err)
		}
		data = string(raw)
		ttl = pc.ttl
	}

	return pc.breaker.Call(func() error {
		return redis.Client().Set(ctx, redis.Key(pc.keyPrefix, key), data, ttl).Err()
	})
}

// Get 返回 (hit, empty, err)；熔断打开时按未命中处理
func (pc *ProtectedCache) Get(ctx context.Context, key string, dest interface{}) (bool, bool, error) {
	if err := pc.delay(ctx); err != nil {
		return false, false, err
	}

	var data string
	err := pc.breaker.Call(func() error {
		var err error
		data, err = redis.Client().Get(ctx, redis.Key(pc.keyPrefix, key)).Result()
		if stderrors.Is(err, ri.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		logger.Logger.Warn("Protected cache get failed, falling back",
			zap.String("prefix", pc.keyPrefix),
			zap.Error(err),
		)
		return false, false, nil
	}

	switch data {
	case "":
		return false, false, nil
	case emptyValueFlag:
		return true, true, nil
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return true, false, nil
}

func (pc *ProtectedCache) Delete(ctx context.Context, key string) error {
	return redis.Client().Del(ctx, redis.Key(pc.keyPrefix, key)).Err()
}

func (pc *ProtectedCache) delay(ctx context.Context) error {
	if pc.jitter <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(rand.Int63n(int64(pc.jitter)))):
		return nil
	}
}
