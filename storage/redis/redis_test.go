package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Reformly/config"
)

func TestKey(t *testing.T) {
	prev := config.Cfg.RedisPrefix
	t.Cleanup(func() { config.Cfg.RedisPrefix = prev })

	config.Cfg.RedisPrefix = "rfm"
	assert.Equal(t, "rfm:onboarding:session:abc", Key("onboarding", "session", "abc"))
	assert.Equal(t, "rfm:a:b", Key("a", "", "b"))

	config.Cfg.RedisPrefix = ""
	assert.Equal(t, "rfm:x", Key("x"))
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "rfm:otp:***", sanitizeKey("rfm:otp:9f86d081884c7d65"))
	assert.Equal(t, "rfm:onboarding:session:***", sanitizeKey("rfm:onboarding:session:abc"))
	assert.Equal(t, "rfm:plans", sanitizeKey("rfm:plans"))
	assert.Nil(t, extractKeys([]interface{}{"ping"}))
}

func TestTracingHook(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	c.AddHook(NewTracingHook("test", 0))

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "v", 0).Err())
	assert.ErrorIs(t, c.Get(ctx, "missing").Err(), redis.Nil)

	_, err := c.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, "n")
		p.Incr(ctx, "n")
		return nil
	})
	require.NoError(t, err)
	n, err := mr.DB(0).Get("n")
	require.NoError(t, err)
	assert.Equal(t, "2", n)
}
