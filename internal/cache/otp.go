package cache

import (
	"context"
	stderrors "errors"
	"time"

	ri "github.com/redis/go-redis/v9"

	"Reformly/config"
	"Reformly/storage/redis"
)

// 验证码：rfm:otp:{emailHash}
// TTL: OTP_EXPIRE_SECONDS
//
// 每日发送计数：rfm:otp:count:{emailHash}:{date}
// TTL: 到次日零点
//
// 错误尝试计数：rfm:otp:attempts:{emailHash}
// TTL: 与验证码相同
const (
	otpPrefix = "otp"

	// MaxVerifyAttempts 同一个验证码允许的错误次数
	MaxVerifyAttempts = 5
)

func otpTTL() time.Duration {
	return time.Duration(config.Cfg.OTPExpireSeconds) * time.Second
}

// SetOTP 保存验证码并重置错误次数
func SetOTP(ctx context.Context, emailHash, code string) error {
	pipe := redis.Client().TxPipeline()
	pipe.Set(ctx, redis.Key(otpPrefix, emailHash), code, otpTTL())
	pipe.Del(ctx, redis.Key(otpPrefix, "attempts", emailHash))
	_, err := pipe.Exec(ctx)
	return err
}

// GetOTP 不存在时返回空字符串
func GetOTP(ctx context.Context, emailHash string) (string, error) {
	code, err := redis.Client().Get(ctx, redis.Key(otpPrefix, emailHash)).Result()
	if stderrors.Is(err, ri.Nil) {
		return "", nil
	}
	return code, err
}

func DeleteOTP(ctx context.Context, emailHash string) error {
	return redis.Client().Del(ctx,
		redis.Key(otpPrefix, emailHash),
		redis.Key(otpPrefix, "attempts", emailHash),
	).Err()
}

// IncrOTPAttempts 记录一次错误输入，返回累计次数
func IncrOTPAttempts(ctx context.Context, emailHash string) (int, error) {
	key := redis.Key(otpPrefix, "attempts", emailHash)

	n, err := redis.Client().Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		redis.Client().Expire(ctx, key, otpTTL())
	}

	return int(n), nil
}

// IncrOTPCount 增加今日发送计数，返回当前次数
func IncrOTPCount(ctx context.Context, emailHash string, now time.Time) (int, error) {
	key := redis.Key(otpPrefix, "count", emailHash, now.Format("2006-01-02"))

	count, err := redis.Client().Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	// 今天第一次发送，次日零点过期
	if count == 1 {
		tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		redis.Client().Expire(ctx, key, tomorrow.Sub(now))
	}

	return int(count), nil
}
