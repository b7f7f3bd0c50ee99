package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 自增主键只在库内使用，对外一律暴露 snowflake public_id
type BaseModel struct {
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"-"`
}
