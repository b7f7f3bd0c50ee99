package model

// OnboardingEventMessage 漏斗事件消息，MessageID 用于消费端幂等
type OnboardingEventMessage struct {
	Payload    map[string]interface{} `json:"payload,omitempty"`
	MessageID  string                 `json:"message_id"`
	SessionID  string                 `json:"session_id"`
	Kind       string                 `json:"kind"`
	Provider   string                 `json:"provider"`
	OccurredAt string                 `json:"occurred_at"` // RFC3339
	FromStep   int                    `json:"from_step"`
	ToStep     int                    `json:"to_step"`
}
