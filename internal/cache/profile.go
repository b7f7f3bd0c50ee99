package cache

import (
	"context"
	"time"
)

// 用户资料缓存：rfm:user:profile:{publicID}
// google 登录拉取资料和 /users/me 都会读取，资料更新时删除
const (
	userProfilePrefix = "user:profile"
	userProfileTTL    = 1 * time.Hour
)

// UserProfile 缓存的资料快照
type UserProfile struct {
	PublicID  string `json:"public_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Provider  string `json:"provider"`
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

var UserProfileCache = NewProtectedCache(userProfilePrefix, userProfileTTL)

// GetUserProfile 未命中返回 nil；empty 为 true 表示已缓存“用户不存在”
func GetUserProfile(ctx context.Context, publicID string) (*UserProfile, bool, error) {
	var p UserProfile
	hit, empty, err := UserProfileCache.Get(ctx, publicID, &p)
	if err != nil || !hit {
		return nil, false, err
	}
	if empty {
		return nil, true, nil
	}
	return &p, false, nil
}

// SetUserProfile p 为 nil 时缓存空值，防止不存在的 id 反复击穿数据库
func SetUserProfile(ctx context.Context, publicID string, p *UserProfile) error {
	if p == nil {
		return UserProfileCache.Set(ctx, publicID, nil)
	}
	return UserProfileCache.Set(ctx, publicID, p)
}

func InvalidateUserProfile(ctx context.Context, publicID string) error {
	return UserProfileCache.Delete(ctx, publicID)
}
