package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"Reformly/config"
	"Reformly/internal/cache"
	"Reformly/pkg/errors"
	"Reformly/pkg/logger"
	"Reformly/pkg/mailer"
	"Reformly/pkg/metrics"
	"Reformly/utils"
)

var (
	verificationService *VerificationService
	verifyOnce          sync.Once
)

func Verification() *VerificationService {
	verifyOnce.Do(func() {
		verificationService = NewVerificationService(nil)
	})
	return verificationService
}

// VerificationService 邮箱验证码的发送与校验
type VerificationService struct {
	mail mailer.Client
	now  func() time.Time
}

// NewVerificationService mail 为 nil 时使用全局 mailer
func NewVerificationService(mail mailer.Client) *VerificationService {
	return &VerificationService{mail: mail, now: time.Now}
}

func (s *VerificationService) client() mailer.Client {
	if s.mail != nil {
		return s.mail
	}
	return mailer.GetClient()
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendCode 生成并发送验证码
// 流程：每日次数检查 -> 生成 6 位验证码 -> 存 Redis -> 发邮件（失败时删除验证码）
func (s *VerificationService) SendCode(ctx context.Context, email string) error {
	emailHash := utils.HashEmail(email)
	client := s.client()

	count, err := cache.IncrOTPCount(ctx, emailHash, s.now())
	if err != nil {
		return fmt.Errorf("failed to check otp count: %w", err)
	}
	if count > config.Cfg.OTPMaxDaily {
		metrics.RecordOTPSent(ctx, client.Provider(), "rate_limited")
		return errors.OTPRateLimited
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	if err := cache.SetOTP(ctx, emailHash, code); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	ttlMinutes := config.Cfg.OTPExpireSeconds / 60
	if err := mailer.SendVerificationCode(ctx, client, utils.NormalizeEmail(email), code, ttlMinutes); err != nil {
		if derr := cache.DeleteOTP(ctx, emailHash); derr != nil {
			logger.Logger.Warn("Failed to delete otp after send failure", zap.Error(derr))
		}
		metrics.RecordOTPSent(ctx, client.Provider(), "error")
		logger.Logger.Error("Failed to send verification email",
			zap.String("email_hash", emailHash),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	metrics.RecordOTPSent(ctx, client.Provider(), "success")
	logger.Logger.Info("Verification code sent",
		zap.String("email_hash", emailHash),
		zap.Int("daily_count", count),
	)

	return nil
}

// VerifyCode 校验验证码，成功后删除；错误次数达到上限时作废验证码
func (s *VerificationService) VerifyCode(ctx context.Context, email, code string) error {
	if !utils.ValidateOTP(code) {
		return errors.VerificationCodeInvalid
	}

	emailHash := utils.HashEmail(email)

	stored, err := cache.GetOTP(ctx, emailHash)
	if err != nil {
		return fmt.Errorf("failed to get otp: %w", err)
	}
	if stored == "" {
		return errors.VerificationCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		attempts, err := cache.IncrOTPAttempts(ctx, emailHash)
		if err != nil {
			return fmt.Errorf("failed to record otp attempt: %w", err)
		}
		if attempts >= cache.MaxVerifyAttempts {
			_ = cache.DeleteOTP(ctx, emailHash)
			return errors.VerificationCodeExpired
		}
		return errors.VerificationCodeInvalid
	}

	if err := cache.DeleteOTP(ctx, emailHash); err != nil {
		logger.Logger.Warn("Failed to delete otp", zap.String("email_hash", emailHash), zap.Error(err))
	}

	return nil
}
