package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"Reformly/internal/cache"
	"Reformly/internal/model"
	"Reformly/pkg/errors"
	"Reformly/pkg/logger"
	"Reformly/storage/mq"
)

// EventStore 漏斗事件持久化
type EventStore interface {
	Create(ctx context.Context, event *model.OnboardingEvent) (bool, error)
}

// StartOnboardingEventConsumer 启动漏斗事件消费者，阻塞到 ctx 取消
func StartOnboardingEventConsumer(ctx context.Context, store EventStore) error {
	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.QueueOnboardingEvents,
		ConsumerTag:   "onboarding_event_consumer",
		PrefetchCount: 20,
		Handler:       HandleOnboardingEvent(store),
	})
}

// HandleOnboardingEvent 幂等消费：先用 Redis 标记去重，再按 event_id 唯一写库
func HandleOnboardingEvent(store EventStore) mq.MessageHandler {
	return func(ctx context.Context, body []byte) error {
		var msg model.OnboardingEventMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			// 格式错误的消息重试也无法成功
			return &errors.SkipMessageError{Reason: fmt.Sprintf("malformed onboarding event: %v", err)}
		}
		if msg.MessageID == "" || msg.SessionID == "" {
			return &errors.SkipMessageError{Reason: "onboarding event without message or session id"}
		}

		first, err := cache.MarkMessageProcessed(ctx, msg.MessageID)
		if err != nil {
			// Redis 不可用时继续写库，唯一索引兜底
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !first {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("message %s already processed", msg.MessageID)}
		}

		inserted, err := store.Create(ctx, toRecord(msg, time.Now()))
		if err != nil {
			if uerr := cache.UnmarkMessageProcessed(ctx, msg.MessageID); uerr != nil {
				logger.Logger.Warn("Failed to unmark message", zap.String("message_id", msg.MessageID), zap.Error(uerr))
			}
			return fmt.Errorf("failed to persist onboarding event: %w", err)
		}

		logger.Logger.Debug("Onboarding event persisted",
			zap.String("message_id", msg.MessageID),
			zap.String("session_id", msg.SessionID),
			zap.String("kind", msg.Kind),
			zap.Bool("inserted", inserted),
		)

		return nil
	}
}
