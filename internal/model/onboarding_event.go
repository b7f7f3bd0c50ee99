package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// OnboardingEventKind 漏斗事件类型
type OnboardingEventKind string

const (
	EventSessionStarted OnboardingEventKind = "session_started"
	EventStepChanged    OnboardingEventKind = "step_changed"
	EventRedirected     OnboardingEventKind = "redirected"
	EventVerified       OnboardingEventKind = "verified"
	EventPlanSelected   OnboardingEventKind = "plan_selected"
)

// OnboardingEvent 漏斗事件落库记录，event_id 唯一保证消费幂等
type OnboardingEvent struct {
	OccurredAt time.Time           `gorm:"type:timestamptz;not null;index" json:"occurred_at"`
	CreatedAt  time.Time           `gorm:"not null;default:now()" json:"created_at"`
	Payload    JSONB               `gorm:"type:jsonb;default:'{}'" json:"payload"`
	EventID    string              `gorm:"uniqueIndex;type:varchar(36);not null" json:"event_id"`
	SessionID  string              `gorm:"index;type:varchar(36);not null" json:"session_id"`
	Kind       OnboardingEventKind `gorm:"type:varchar(32);not null;index" json:"kind"`
	Provider   string              `gorm:"type:varchar(16);not null;default:'none'" json:"provider"`
	ID         int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	FromStep   int                 `gorm:"not null;default:0" json:"from_step"`
	ToStep     int                 `gorm:"not null;default:0" json:"to_step"`
}

func (OnboardingEvent) TableName() string {
	return "onboarding_events"
}

// JSONB 自定义 JSONB 类型
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value")
	}

	return json.Unmarshal(raw, j)
}
