package cache

import (
	"context"
	"time"

	"Reformly/storage/redis"
)

const (
	tokenPrefix = "token"
)

// SetRefreshToken 存储 refresh token
// Key: rfm:token:refresh:{user_id}
func SetRefreshToken(ctx context.Context, userID, refreshToken string, ttl time.Duration) error {
	key := redis.Key(tokenPrefix, "refresh", userID)
	return redis.Client().Set(ctx, key, refreshToken, ttl).Err()
}

func GetRefreshToken(ctx context.Context, userID string) (string, error) {
	key := redis.Key(tokenPrefix, "refresh", userID)
	return redis.Client().Get(ctx, key).Result()
}

// DeleteRefreshToken 登出或轮换时失效旧 token
func DeleteRefreshToken(ctx context.Context, userID string) error {
	key := redis.Key(tokenPrefix, "refresh", userID)
	return redis.Client().Del(ctx, key).Err()
}

// ValidateRefreshTokenExists 检查 refresh token 是否存在且匹配
func ValidateRefreshTokenExists(ctx context.Context, userID, refreshToken string) bool {
	stored, err := GetRefreshToken(ctx, userID)
	if err != nil {
		return false
	}
	return stored == refreshToken
}
