package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	ri "github.com/redis/go-redis/v9"

	"Reformly/config"
	"Reformly/internal/onboarding"
	"Reformly/pkg/errors"
	"Reformly/storage/redis"
)

// 引导会话：rfm:onboarding:session:{sessionID}
// TTL: ONBOARDING_SESSION_TTL_HOURS，每次保存都会续期
const sessionPrefix = "onboarding:session"

func SaveSession(ctx context.Context, sessionID string, s onboarding.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal onboarding state: %w", err)
	}

	key := redis.Key(sessionPrefix, sessionID)
	return redis.Client().Set(ctx, key, data, config.Cfg.SessionTTL()).Err()
}

// GetSession 会话不存在或已过期时返回 OnboardingSessionNotFound
func GetSession(ctx context.Context, sessionID string) (onboarding.State, error) {
	key := redis.Key(sessionPrefix, sessionID)

	data, err := redis.Client().Get(ctx, key).Bytes()
	if err != nil {
		if stderrors.Is(err, ri.Nil) {
			return onboarding.State{}, errors.OnboardingSessionNotFound
		}
		return onboarding.State{}, fmt.Errorf("failed to load onboarding session: %w", err)
	}

	var s onboarding.State
	if err := json.Unmarshal(data, &s); err != nil {
		return onboarding.State{}, fmt.Errorf("failed to unmarshal onboarding state: %w", err)
	}

	return s, nil
}

func DeleteSession(ctx context.Context, sessionID string) error {
	return redis.Client().Del(ctx, redis.Key(sessionPrefix, sessionID)).Err()
}
