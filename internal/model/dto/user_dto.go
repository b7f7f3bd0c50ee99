package dto

// ========== User 相关 DTO ==========

// UserProfileData 用户资料数据
type UserProfileData struct {
	ID       string    `json:"id"`
	Email    EmailInfo `json:"email"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Bio      string    `json:"bio"`
	Provider string    `json:"provider"`
	Status   string    `json:"status"`
}

// EmailInfo 邮箱信息
type EmailInfo struct {
	AddressMasked string `json:"address_masked"`
	Verified      bool   `json:"verified"`
}
