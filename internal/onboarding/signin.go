package onboarding

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"Reformly/pkg/errors"
)

// FederatedUser 身份提供方返回的用户。
type FederatedUser struct {
	ID    string
	Email string
}

// Credential 身份提供方签发的不透明凭证。
type Credential struct {
	Token   string
	Subject string
	Email   string
}

// Session 后端换取凭证后签发的会话。
type Session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	IsNewUser    bool
}

// RemoteProfile 后端返回的资料，缺失字段为空串。
type RemoteProfile struct {
	Name     string
	Username string
	Bio      string
}

type IdentityProvider interface {
	SignIn(ctx context.Context) (FederatedUser, Credential, error)
}

type SessionExchanger interface {
	Authenticate(ctx context.Context, cred Credential) (Session, error)
}

type ProfileFetcher interface {
	GetProfile(ctx context.Context, session Session) (RemoteProfile, error)
}

// SignInResult 联合登录成功后的结果。
// Event 可以重新作用在最新的会话状态上，Transition 是它作用在入参状态上的结果。
type SignInResult struct {
	User       FederatedUser
	Session    Session
	Event      Event
	Transition Transition
}

// FederatedSignIn 执行 google 登录的线性流程：
// 取凭证 -> 换会话 -> 拉资料 -> 提交身份 -> 一次性跳到第 3 步。
// 任一环节失败时返回原状态不变，错误均可重试。
func FederatedSignIn(
	ctx context.Context,
	s State,
	idp IdentityProvider,
	exchanger SessionExchanger,
	profiles ProfileFetcher,
	timeout time.Duration,
) (SignInResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	user, cred, err := idp.SignIn(ctx)
	if err != nil {
		return SignInResult{}, classify(ctx, err, errors.IdentityFailed)
	}

	session, err := exchanger.Authenticate(ctx, cred)
	if err != nil {
		return SignInResult{}, classify(ctx, err, errors.BackendAuthFailed)
	}

	remote, err := profiles.GetProfile(ctx, session)
	if err != nil {
		return SignInResult{}, classify(ctx, err, errors.BackendAuthFailed)
	}

	// 所有外部调用都成功后才修改状态，身份和资料一次提交
	ev := SignedIn(AuthState{
		IsVerified: true,
		Provider:   ProviderGoogle,
		Email:      user.Email,
	}, Profile{
		Name:     remote.Name,
		Username: remote.Username,
		Bio:      remote.Bio,
	})

	return SignInResult{User: user, Session: session, Event: ev, Transition: Apply(s, ev)}, nil
}

// classify 超时统一映射为 SignInTimeout，已知业务错误原样返回，其余归为 fallback。
func classify(ctx context.Context, err error, fallback errors.Definition) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.SignInTimeout
	}

	var def errors.Definition
	if stderrors.As(err, &def) {
		return def
	}

	return fmt.Errorf("%w: %v", fallback, err)
}
