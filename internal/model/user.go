package model

import "time"

// UserStatus 用户状态枚举
type UserStatus string

const (
	UserStatusOnboarding UserStatus = "onboarding" // 已验证身份，引导未完成
	UserStatusActive     UserStatus = "active"     // 已选择订阅
)

// User 用户模型，邮箱只保存密文和哈希
type User struct {
	BaseModel
	PublicID     int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	EmailCipher  []byte     `gorm:"type:bytea" json:"-"`
	EmailHash    string     `gorm:"uniqueIndex;type:char(64);not null" json:"-"`
	GoogleUID    *string    `gorm:"uniqueIndex;type:varchar(128)" json:"-"`
	Provider     string     `gorm:"type:varchar(16);not null;default:'password'" json:"provider"`
	Name         string     `gorm:"type:varchar(64);not null;default:''" json:"name"`
	Username     string     `gorm:"type:varchar(32);not null;default:''" json:"username"`
	Bio          string     `gorm:"type:varchar(280);not null;default:''" json:"bio"`
	Status       UserStatus `gorm:"type:varchar(16);not null;default:'onboarding';index:idx_users_status" json:"status"`
	LastSignInAt *time.Time `gorm:"type:timestamptz" json:"last_sign_in_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}
