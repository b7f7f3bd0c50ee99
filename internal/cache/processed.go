package cache

import (
	"context"
	"time"

	"Reformly/storage/redis"
)

const (
	messageProcessedPrefix = "message:processed"
	processedTTL           = 48 * time.Hour
)

// MarkMessageProcessed 首次标记返回 true，重复投递返回 false
func MarkMessageProcessed(ctx context.Context, messageID string) (bool, error) {
	return redis.Client().SetNX(ctx, redis.Key(messageProcessedPrefix, messageID), 1, processedTTL).Result()
}

// UnmarkMessageProcessed 处理失败需要重试时清除标记
func UnmarkMessageProcessed(ctx context.Context, messageID string) error {
	return redis.Client().Del(ctx, redis.Key(messageProcessedPrefix, messageID)).Err()
}
