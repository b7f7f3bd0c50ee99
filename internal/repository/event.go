package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Reformly/internal/model"
	"Reformly/storage/database"
)

// EventRepository 漏斗事件表
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create 按 event_id 去重写入，返回是否真正插入（重复投递时为 false）
func (r *EventRepository) Create(ctx context.Context, event *model.OnboardingEvent) (bool, error) {
	db := r.db
	if db == nil {
		db = database.DB()
	}

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(event)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert onboarding event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}
