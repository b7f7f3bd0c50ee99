package queue

import (
	"time"

	"github.com/google/uuid"

	"Reformly/internal/model"
	"Reformly/internal/onboarding"
)

// RoutingKey onboarding.<kind>，与 mq.BindingOnboarding 匹配
func RoutingKey(kind model.OnboardingEventKind) string {
	return "onboarding." + string(kind)
}

// NewOnboardingEventMessage 由一次状态迁移生成漏斗事件
func NewOnboardingEventMessage(
	sessionID string,
	kind model.OnboardingEventKind,
	t onboarding.Transition,
	payload map[string]interface{},
	now time.Time,
) model.OnboardingEventMessage {
	return model.OnboardingEventMessage{
		MessageID:  uuid.NewString(),
		SessionID:  sessionID,
		Kind:       string(kind),
		Provider:   string(t.State.Auth.Provider),
		FromStep:   int(t.From),
		ToStep:     int(t.To),
		OccurredAt: now.UTC().Format(time.RFC3339),
		Payload:    payload,
	}
}

// toRecord 消息转换为落库记录，时间解析失败时使用接收时间
func toRecord(msg model.OnboardingEventMessage, received time.Time) *model.OnboardingEvent {
	occurred, err := time.Parse(time.RFC3339, msg.OccurredAt)
	if err != nil {
		occurred = received
	}

	provider := msg.Provider
	if provider == "" {
		provider = string(onboarding.ProviderNone)
	}

	return &model.OnboardingEvent{
		EventID:    msg.MessageID,
		SessionID:  msg.SessionID,
		Kind:       model.OnboardingEventKind(msg.Kind),
		Provider:   provider,
		FromStep:   msg.FromStep,
		ToStep:     msg.ToStep,
		Payload:    model.JSONB(msg.Payload),
		OccurredAt: occurred,
	}
}
