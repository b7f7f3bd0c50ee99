package service

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"Reformly/internal/cache"
	"Reformly/internal/model"
	"Reformly/internal/model/dto"
	"Reformly/internal/repository"
	"Reformly/pkg/errors"
	"Reformly/pkg/logger"
	"Reformly/utils"
)

var (
	userService *UserService
	userOnce    sync.Once
)

func User() *UserService {
	userOnce.Do(func() {
		userService = NewUserService(repository.NewUserRepository(nil))
	})
	return userService
}

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Profile 读取用户资料，先查缓存，不存在的用户也会缓存一个空值
func (s *UserService) Profile(ctx context.Context, userID string) (*cache.UserProfile, error) {
	cached, empty, err := cache.GetUserProfile(ctx, userID)
	if err != nil {
		logger.Logger.Warn("Failed to read profile cache", zap.String("user_id", userID), zap.Error(err))
	}
	if empty {
		return nil, errors.UserNotFound
	}
	if cached != nil {
		return cached, nil
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		if stderrors.Is(err, errors.UserNotFound) {
			_ = cache.SetUserProfile(ctx, userID, nil)
		}
		return nil, err
	}

	p := profileOf(user)
	if err := cache.SetUserProfile(ctx, userID, p); err != nil {
		logger.Logger.Warn("Failed to cache profile", zap.String("user_id", userID), zap.Error(err))
	}
	return p, nil
}

// Me 当前登录用户的资料，邮箱解密后脱敏返回
func (s *UserService) Me(ctx context.Context, userID string) (dto.UserProfileData, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return dto.UserProfileData{}, err
	}

	var masked string
	if len(user.EmailCipher) > 0 {
		email, err := utils.DecryptEmail(user.EmailCipher)
		if err != nil {
			logger.Logger.Warn("Failed to decrypt email", zap.String("user_id", userID), zap.Error(err))
		} else {
			masked = MaskEmail(email)
		}
	}

	return dto.UserProfileData{
		ID: userID,
		Email: dto.EmailInfo{
			AddressMasked: masked,
			Verified:      user.EmailHash != "",
		},
		Name:     user.Name,
		Username: user.Username,
		Bio:      user.Bio,
		Provider: user.Provider,
		Status:   string(user.Status),
	}, nil
}

func (s *UserService) find(ctx context.Context, userID string) (*model.User, error) {
	publicID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, errors.InvalidUserID
	}
	return s.users.FindByPublicID(ctx, publicID)
}

func profileOf(u *model.User) *cache.UserProfile {
	return &cache.UserProfile{
		PublicID:  strconv.FormatInt(u.PublicID, 10),
		Name:      u.Name,
		Username:  u.Username,
		Bio:       u.Bio,
		Provider:  u.Provider,
		Status:    string(u.Status),
		UpdatedAt: u.UpdatedAt.Unix(),
	}
}

// MaskEmail mex@example.com -> m**@example.com
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	local := email[:at]
	return local[:1] + strings.Repeat("*", len(local)-1) + email[at:]
}
