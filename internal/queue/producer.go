package queue

import (
	"context"

	"go.uber.org/zap"

	"Reformly/config"
	"Reformly/internal/model"
	"Reformly/pkg/logger"
	"Reformly/pkg/metrics"
	"Reformly/storage/mq"
)

// Publisher 把漏斗事件投递到 RabbitMQ
type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(ctx context.Context, msg model.OnboardingEventMessage) error {
	return PublishOnboardingEvent(ctx, msg)
}

// PublishOnboardingEvent 发布漏斗事件；关闭事件总线时只写日志
func PublishOnboardingEvent(ctx context.Context, msg model.OnboardingEventMessage) error {
	kind := model.OnboardingEventKind(msg.Kind)

	if !config.Cfg.EventsEnabled {
		logger.Logger.Debug("Onboarding event (bus disabled)",
			zap.String("message_id", msg.MessageID),
			zap.String("session_id", msg.SessionID),
			zap.String("kind", msg.Kind),
		)
		metrics.RecordEventPublish(ctx, msg.Kind, "skipped")
		return nil
	}

	err := mq.PublishMessage(ctx, mq.ExchangeOnboarding, RoutingKey(kind), msg.MessageID, msg)
	if err != nil {
		logger.Logger.Error("Failed to publish onboarding event",
			zap.String("message_id", msg.MessageID),
			zap.String("session_id", msg.SessionID),
			zap.String("kind", msg.Kind),
			zap.Error(err),
		)
		metrics.RecordEventPublish(ctx, msg.Kind, "error")
		return err
	}

	logger.Logger.Debug("Published onboarding event",
		zap.String("message_id", msg.MessageID),
		zap.String("session_id", msg.SessionID),
		zap.String("kind", msg.Kind),
		zap.Int("from", msg.FromStep),
		zap.Int("to", msg.ToStep),
	)
	metrics.RecordEventPublish(ctx, msg.Kind, "success")

	return nil
}
