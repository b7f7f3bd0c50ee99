package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"Reformly/config"
	"Reformly/internal/cache"
	"Reformly/internal/model"
	"Reformly/internal/model/dto"
	"Reformly/internal/onboarding"
	"Reformly/internal/repository"
	"Reformly/pkg/errors"
	"Reformly/pkg/identity"
	"Reformly/pkg/logger"
	"Reformly/pkg/metrics"
	"Reformly/pkg/snowflake"
	"Reformly/pkg/token"
	"Reformly/utils"
)

// UserStore 用户持久化
type UserStore interface {
	FindByEmailHash(ctx context.Context, hash string) (*model.User, error)
	FindByGoogleUID(ctx context.Context, uid string) (*model.User, error)
	FindByPublicID(ctx context.Context, publicID int64) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
}

var (
	authService *AuthService
	authOnce    sync.Once

	// 由 cmd/server 在 firebase 初始化后设置；未设置时 google 登录不可用
	identityVerifier identity.Verifier
)

func SetIdentityVerifier(v identity.Verifier) {
	identityVerifier = v
}

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = NewAuthService(AuthDeps{
			Users:        repository.NewUserRepository(nil),
			Onboarding:   Onboarding(),
			Verification: Verification(),
			Profiles:     User(),
			Verifier:     identityVerifier,
			Timeout:      config.Cfg.IdentityTimeout(),
		})
	})
	return authService
}

type AuthDeps struct {
	Users        UserStore
	Onboarding   *OnboardingService
	Verification *VerificationService
	Profiles     *UserService
	Verifier     identity.Verifier
	Timeout      time.Duration
}

// AuthService 邮箱验证码和 google 两种身份验证方式，验证成功后推进引导会话
type AuthService struct {
	users        UserStore
	onboarding   *OnboardingService
	verification *VerificationService
	profiles     *UserService
	verifier     identity.Verifier
	timeout      time.Duration
	now          func() time.Time
}

func NewAuthService(deps AuthDeps) *AuthService {
	return &AuthService{
		users:        deps.Users,
		onboarding:   deps.Onboarding,
		verification: deps.Verification,
		profiles:     deps.Profiles,
		verifier:     deps.Verifier,
		timeout:      deps.Timeout,
		now:          time.Now,
	}
}

// SubmitEmail 第 1 步提交邮箱：发送验证码并前进到第 2 步；在第 2 步调用即为重新发送
func (s *AuthService) SubmitEmail(ctx context.Context, sessionID, email string) (dto.SendEmailCodeResponse, error) {
	email = utils.NormalizeEmail(email)
	if !utils.ValidateEmail(email) {
		return dto.SendEmailCodeResponse{}, errors.InvalidEmail
	}

	st, err := cache.GetSession(ctx, sessionID)
	if err != nil {
		return dto.SendEmailCodeResponse{}, err
	}
	if st.Auth.Granted() || (st.Step != onboarding.StepEmail && st.Step != onboarding.StepOTP) {
		return dto.SendEmailCodeResponse{}, errors.OnboardingStepInvalid
	}

	if err := s.verification.SendCode(ctx, email); err != nil {
		return dto.SendEmailCodeResponse{}, err
	}

	t := onboarding.Apply(st, onboarding.AuthChanged(onboarding.AuthState{
		Provider: onboarding.ProviderNone,
		Email:    email,
	}))
	if t.State.Step == onboarding.StepEmail {
		next := onboarding.Apply(t.State, onboarding.Next())
		next.From = t.From
		t = next
	}

	if err := s.onboarding.commit(ctx, sessionID, t, onboarding.StepOTP); err != nil {
		return dto.SendEmailCodeResponse{}, err
	}

	return dto.SendEmailCodeResponse{
		Session:   dto.NewSessionSnapshot(sessionID, t),
		ExpiresIn: config.Cfg.OTPExpireSeconds,
	}, nil
}

// VerifyEmail 第 2 步校验验证码；成功后身份变为 password 已验证，并自动前进到第 3 步
func (s *AuthService) VerifyEmail(ctx context.Context, sessionID, code string) (dto.SignInResponse, error) {
	st, err := cache.GetSession(ctx, sessionID)
	if err != nil {
		return dto.SignInResponse{}, err
	}
	if st.Step != onboarding.StepOTP || st.Auth.Email == "" {
		return dto.SignInResponse{}, errors.OnboardingStepInvalid
	}

	email := st.Auth.Email
	if err := s.verification.VerifyCode(ctx, email, code); err != nil {
		return dto.SignInResponse{}, err
	}

	user, isNew, err := s.upsertEmailUser(ctx, email)
	if err != nil {
		return dto.SignInResponse{}, err
	}

	userID := strconv.FormatInt(user.PublicID, 10)
	pair, err := s.issueTokens(ctx, userID)
	if err != nil {
		return dto.SignInResponse{}, err
	}

	t := onboarding.Apply(st, onboarding.AuthChanged(onboarding.AuthState{
		IsVerified: true,
		Provider:   onboarding.ProviderPassword,
		Email:      email,
	}))
	if err := s.onboarding.commit(ctx, sessionID, t, t.To); err != nil {
		return dto.SignInResponse{}, err
	}
	s.onboarding.publish(ctx, sessionID, model.EventVerified, t, map[string]interface{}{"is_new_user": isNew})

	logger.WithTrace(ctx).Info("Email verified",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
		zap.Bool("is_new_user", isNew),
	)

	return dto.SignInResponse{
		Tokens:  tokenPairDTO(pair),
		User:    userSnapshot(user, isNew),
		Session: dto.NewSessionSnapshot(sessionID, t),
	}, nil
}

// GoogleSignIn 同一会话同一时刻只允许一个登录流程
func (s *AuthService) GoogleSignIn(ctx context.Context, sessionID string, req dto.GoogleSignInRequest) (dto.SignInResponse, error) {
	lockKey := "signin:" + sessionID
	locked, err := cache.TryLock(ctx, lockKey, s.timeout+5*time.Second)
	if err != nil {
		return dto.SignInResponse{}, fmt.Errorf("failed to acquire sign-in lock: %w", err)
	}
	if !locked {
		return dto.SignInResponse{}, errors.SignInInProgress
	}
	defer func() {
		if err := cache.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
			logger.Logger.Warn("Failed to release sign-in lock", zap.String("session_id", sessionID), zap.Error(err))
		}
	}()

	st, err := cache.GetSession(ctx, sessionID)
	if err != nil {
		return dto.SignInResponse{}, err
	}

	idp := &googleIdentity{verifier: s.verifier, idToken: req.IDToken, clientError: req.ClientError}

	start := s.now()
	res, err := onboarding.FederatedSignIn(ctx, st, idp, s, s, s.timeout)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		outcome := "error"
		if def, ok := errors.As(err); ok {
			outcome = def.Code
		}
		metrics.RecordSignIn(ctx, outcome, elapsed)

		if identity.Cancelled(err) {
			logger.WithTrace(ctx).Info("Google sign-in cancelled", zap.String("session_id", sessionID))
		} else {
			logger.WithTrace(ctx).Warn("Google sign-in failed",
				zap.String("session_id", sessionID),
				zap.String("cause", outcome),
				zap.Error(err),
			)
		}
		return dto.SignInResponse{}, err
	}
	metrics.RecordSignIn(ctx, "success", elapsed)

	// 登录期间会话可能已被其他请求修改，在最新状态上提交
	latest, err := cache.GetSession(ctx, sessionID)
	if err != nil {
		return dto.SignInResponse{}, err
	}
	t := onboarding.Apply(latest, res.Event)
	if err := s.onboarding.commit(ctx, sessionID, t, t.From); err != nil {
		return dto.SignInResponse{}, err
	}
	s.onboarding.publish(ctx, sessionID, model.EventVerified, t, map[string]interface{}{"is_new_user": res.Session.IsNewUser})

	logger.WithTrace(ctx).Info("Google sign-in completed",
		zap.String("session_id", sessionID),
		zap.String("user_id", res.Session.UserID),
		zap.Int("from", int(t.From)),
		zap.Int("to", int(t.To)),
	)

	profile := t.State.Data.Profile
	return dto.SignInResponse{
		Tokens: dto.TokenPair{
			AccessToken:  res.Session.AccessToken,
			RefreshToken: res.Session.RefreshToken,
			ExpiresIn:    res.Session.ExpiresIn,
		},
		User: dto.AuthUserSnapshot{
			ID:        res.Session.UserID,
			Name:      profile.Name,
			Username:  profile.Username,
			Provider:  string(onboarding.ProviderGoogle),
			IsNewUser: res.Session.IsNewUser,
		},
		Session: dto.NewSessionSnapshot(sessionID, t),
	}, nil
}

// Authenticate 用已验证的 google 凭证换取后端会话：按 google uid、再按邮箱查找用户，都没有则注册
func (s *AuthService) Authenticate(ctx context.Context, cred onboarding.Credential) (onboarding.Session, error) {
	user, err := s.users.FindByGoogleUID(ctx, cred.Subject)
	isNew := false

	switch {
	case err == nil:
	case stderrors.Is(err, errors.UserNotFound):
		user, err = s.users.FindByEmailHash(ctx, utils.HashEmail(cred.Email))
		switch {
		case err == nil:
			// 已用邮箱注册过，绑定 google 账号
			uid := cred.Subject
			user.GoogleUID = &uid
		case stderrors.Is(err, errors.UserNotFound):
			user, err = s.newUser(cred.Email, string(onboarding.ProviderGoogle))
			if err != nil {
				return onboarding.Session{}, err
			}
			uid := cred.Subject
			user.GoogleUID = &uid
			isNew = true
		default:
			return onboarding.Session{}, err
		}
	default:
		return onboarding.Session{}, err
	}

	now := s.now()
	user.LastSignInAt = &now
	if isNew {
		err = s.users.Create(ctx, user)
	} else {
		err = s.users.Save(ctx, user)
	}
	if err != nil {
		return onboarding.Session{}, err
	}

	userID := strconv.FormatInt(user.PublicID, 10)
	pair, err := s.issueTokens(ctx, userID)
	if err != nil {
		return onboarding.Session{}, err
	}

	return onboarding.Session{
		UserID:       userID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		IsNewUser:    isNew,
	}, nil
}

// GetProfile 读取已保存的资料，缺失字段为空串
func (s *AuthService) GetProfile(ctx context.Context, session onboarding.Session) (onboarding.RemoteProfile, error) {
	p, err := s.profiles.Profile(ctx, session.UserID)
	if err != nil {
		return onboarding.RemoteProfile{}, err
	}
	return onboarding.RemoteProfile{Name: p.Name, Username: p.Username, Bio: p.Bio}, nil
}

// RefreshToken 校验 refresh token 并轮换
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (dto.TokenPair, error) {
	userID, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return dto.TokenPair{}, errors.Unauthorized
	}

	if !cache.ValidateRefreshTokenExists(ctx, userID, refreshToken) {
		return dto.TokenPair{}, errors.Unauthorized
	}

	publicID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return dto.TokenPair{}, errors.InvalidUserID
	}
	if _, err := s.users.FindByPublicID(ctx, publicID); err != nil {
		return dto.TokenPair{}, err
	}

	pair, err := s.issueTokens(ctx, userID)
	if err != nil {
		return dto.TokenPair{}, err
	}
	return tokenPairDTO(pair), nil
}

func (s *AuthService) upsertEmailUser(ctx context.Context, email string) (*model.User, bool, error) {
	user, err := s.users.FindByEmailHash(ctx, utils.HashEmail(email))
	if err == nil {
		now := s.now()
		user.LastSignInAt = &now
		if err := s.users.Save(ctx, user); err != nil {
			return nil, false, err
		}
		return user, false, nil
	}
	if !stderrors.Is(err, errors.UserNotFound) {
		return nil, false, err
	}

	user, err = s.newUser(email, string(onboarding.ProviderPassword))
	if err != nil {
		return nil, false, err
	}
	now := s.now()
	user.LastSignInAt = &now
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}

	logger.Logger.Info("New user created",
		zap.Int64("public_id", user.PublicID),
		zap.String("provider", user.Provider),
	)
	return user, true, nil
}

func (s *AuthService) newUser(email, provider string) (*model.User, error) {
	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	cipher, err := utils.EncryptEmail(utils.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt email: %w", err)
	}

	return &model.User{
		PublicID:    publicID,
		EmailCipher: cipher,
		EmailHash:   utils.HashEmail(email),
		Provider:    provider,
		Status:      model.UserStatusOnboarding,
	}, nil
}

// issueTokens 生成 token 对，并把 refresh token 缓存到 Redis
func (s *AuthService) issueTokens(ctx context.Context, userID string) (token.Pair, error) {
	pair, err := token.GenerateTokenPair(userID)
	if err != nil {
		return token.Pair{}, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := cache.SetRefreshToken(ctx, userID, pair.RefreshToken, token.RefreshTTL()); err != nil {
		logger.Logger.Warn("Failed to store refresh token in Redis",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	return pair, nil
}

func tokenPairDTO(p token.Pair) dto.TokenPair {
	return dto.TokenPair{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken, ExpiresIn: p.ExpiresIn}
}

func userSnapshot(u *model.User, isNew bool) dto.AuthUserSnapshot {
	return dto.AuthUserSnapshot{
		ID:        strconv.FormatInt(u.PublicID, 10),
		Name:      u.Name,
		Username:  u.Username,
		Provider:  u.Provider,
		IsNewUser: isNew,
	}
}

// googleIdentity 把浏览器转发的 google ID token 适配为身份提供方
type googleIdentity struct {
	verifier    identity.Verifier
	idToken     string
	clientError string
}

func (g *googleIdentity) SignIn(ctx context.Context) (onboarding.FederatedUser, onboarding.Credential, error) {
	if err := identity.ClientError(g.clientError); err != nil {
		return onboarding.FederatedUser{}, onboarding.Credential{}, err
	}
	if g.verifier == nil {
		return onboarding.FederatedUser{}, onboarding.Credential{}, errors.IdentityUnavailable
	}

	id, err := g.verifier.Verify(ctx, g.idToken)
	if err != nil {
		return onboarding.FederatedUser{}, onboarding.Credential{}, err
	}

	return onboarding.FederatedUser{ID: id.UID, Email: id.Email},
		onboarding.Credential{Token: g.idToken, Subject: id.UID, Email: id.Email},
		nil
}
