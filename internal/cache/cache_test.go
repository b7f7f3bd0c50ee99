package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Reformly/internal/onboarding"
	perrors "Reformly/pkg/errors"
	"Reformly/storage/redis"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	redis.SetClient(c)
	t.Cleanup(func() { _ = c.Close() })
	return mr
}

func TestSession_SaveGet(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	_, err := GetSession(ctx, "missing")
	assert.ErrorIs(t, err, perrors.OnboardingSessionNotFound)

	s := onboarding.NewState()
	s.Step = 5
	s.Auth = onboarding.AuthState{IsVerified: true, Provider: onboarding.ProviderPassword, Email: "mex@example.com"}
	s.Data.AboutYou.MainGoal = "build-muscle"
	require.NoError(t, SaveSession(ctx, "abc", s))

	got, err := GetSession(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.True(t, mr.TTL(redis.Key(sessionPrefix, "abc")) > 0)

	require.NoError(t, DeleteSession(ctx, "abc"))
	_, err = GetSession(ctx, "abc")
	assert.ErrorIs(t, err, perrors.OnboardingSessionNotFound)
}

func TestOTP_Lifecycle(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	code, err := GetOTP(ctx, "h")
	require.NoError(t, err)
	assert.Empty(t, code)

	require.NoError(t, SetOTP(ctx, "h", "123456"))
	n, err := IncrOTPAttempts(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// 重新发送会重置错误次数
	require.NoError(t, SetOTP(ctx, "h", "654321"))
	n, err = IncrOTPAttempts(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	code, err = GetOTP(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, "654321", code)

	mr.FastForward(6 * time.Minute)
	code, err = GetOTP(ctx, "h")
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestIncrOTPCount_ExpiresAtMidnight(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		n, err := IncrOTPCount(ctx, "h", now)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	ttl := mr.TTL(redis.Key(otpPrefix, "count", "h", "2026-03-01"))
	assert.Equal(t, time.Hour, ttl)
}

func TestLock(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	ok, err := TryLock(ctx, "signin:s1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = TryLock(ctx, "signin:s1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Unlock(ctx, "signin:s1"))
	ok, err = TryLock(ctx, "signin:s1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefreshToken(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	require.NoError(t, SetRefreshToken(ctx, "42", "r1", time.Hour))
	assert.True(t, ValidateRefreshTokenExists(ctx, "42", "r1"))
	assert.False(t, ValidateRefreshTokenExists(ctx, "42", "r2"))

	require.NoError(t, DeleteRefreshToken(ctx, "42"))
	assert.False(t, ValidateRefreshTokenExists(ctx, "42", "r1"))
}

func TestMarkMessageProcessed(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	first, err := MarkMessageProcessed(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := MarkMessageProcessed(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, UnmarkMessageProcessed(ctx, "m1"))
	first, err = MarkMessageProcessed(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestUserProfileCache(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()
	UserProfileCache.jitter = 0

	p, empty, err := GetUserProfile(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.False(t, empty)

	require.NoError(t, SetUserProfile(ctx, "7", &UserProfile{PublicID: "7", Name: "Mex"}))
	p, _, err = GetUserProfile(ctx, "7")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Mex", p.Name)

	require.NoError(t, SetUserProfile(ctx, "8", nil))
	p, empty, err = GetUserProfile(ctx, "8")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.True(t, empty)

	require.NoError(t, InvalidateUserProfile(ctx, "7"))
	p, _, err = GetUserProfile(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProtectedCache_FallsBackWhenRedisDown(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	pc := NewProtectedCache("t", time.Minute)
	pc.jitter = 0
	mr.Close()

	var dst map[string]string
	hit, empty, err := pc.Get(ctx, "k", &dst)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, empty)
}

func TestCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("t", 2, 20*time.Millisecond)
	boom := errors.New("boom")

	assert.ErrorIs(t, cb.Call(func() error { return boom }), boom)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.ErrorIs(t, cb.Call(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.Error(t, err)
	assert.False(t, called)

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}
