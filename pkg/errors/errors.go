package errors

import stderrors "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	AuthCodeInvalid         = Definition{Code: "AUTH_CODE_INVALID", Message: "Auth code invalid"}
	OTPRateLimited          = Definition{Code: "OTP_RATE_LIMITED", Message: "Too many verification codes requested today"}
	VerificationCodeExpired = Definition{Code: "VERIFICATION_CODE_EXPIRED", Message: "Verification code expired"}
	VerificationCodeInvalid = Definition{Code: "VERIFICATION_CODE_INVALID", Message: "Verification code invalid"}
	InvalidEmail            = Definition{Code: "INVALID_EMAIL", Message: "Invalid email address"}
	Unauthorized            = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID           = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	UserNotFound            = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	TooManyRequests         = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, please try again later"}
	CSRFInvalid             = Definition{Code: "CSRF_INVALID", Message: "Invalid or missing CSRF token"}
)

// 联合登录错误，全部可重试，文案直接展示给用户。
var (
	SignInCancelled     = Definition{Code: "SIGN_IN_CANCELLED", Message: "Sign-in popup was closed. Please try again."}
	SignInPopupBlocked  = Definition{Code: "SIGN_IN_POPUP_BLOCKED", Message: "Popup was blocked by browser. Please allow popups and try again."}
	SignInNetworkError  = Definition{Code: "SIGN_IN_NETWORK_ERROR", Message: "Network error. Please check your connection and try again."}
	IdentityFailed      = Definition{Code: "SIGN_IN_FAILED", Message: "Failed to sign in with Google. Please try again."}
	BackendAuthFailed   = Definition{Code: "BACKEND_AUTH_FAILED", Message: "Failed to authenticate with backend. Please try again."}
	SignInTimeout       = Definition{Code: "SIGN_IN_TIMEOUT", Message: "Sign-in took too long. Please try again."}
	SignInInProgress    = Definition{Code: "SIGN_IN_IN_PROGRESS", Message: "Sign-in already in progress"}
	IdentityUnavailable = Definition{Code: "SIGN_IN_UNAVAILABLE", Message: "Google sign-in is not available right now. Please continue with email."}
)

// 引导流程错误。
var (
	OnboardingSessionNotFound = Definition{Code: "ONBOARDING_SESSION_NOT_FOUND", Message: "Onboarding session not found or expired"}
	OnboardingStepInvalid     = Definition{Code: "ONBOARDING_STEP_INVALID", Message: "Onboarding step invalid"}
	OnboardingFieldInvalid    = Definition{Code: "ONBOARDING_FIELD_INVALID", Message: "Onboarding field invalid"}
	PlanNotFound              = Definition{Code: "PLAN_NOT_FOUND", Message: "Plan not found"}
)

// 基础设施错误。
var (
	ErrTokenGeneratorNotInitialized = stderrors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = stderrors.New("unexpected signing method")
	ErrInvalidToken                 = stderrors.New("invalid token")
	ErrInvalidTokenClaims           = stderrors.New("invalid token claims")
	ErrInvalidTokenType             = stderrors.New("invalid token type")
	ErrUserIDNotFound               = stderrors.New("user id not found in token")
)

// SkipMessageError 消费者遇到重复消息时返回，直接 ack 不再重试。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return e.Reason
}

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	AuthCodeInvalid.Code:           AuthCodeInvalid,
	OTPRateLimited.Code:            OTPRateLimited,
	VerificationCodeExpired.Code:   VerificationCodeExpired,
	VerificationCodeInvalid.Code:   VerificationCodeInvalid,
	InvalidEmail.Code:              InvalidEmail,
	Unauthorized.Code:              Unauthorized,
	InvalidUserID.Code:             InvalidUserID,
	UserNotFound.Code:              UserNotFound,
	TooManyRequests.Code:           TooManyRequests,
	CSRFInvalid.Code:               CSRFInvalid,
	SignInCancelled.Code:           SignInCancelled,
	SignInPopupBlocked.Code:        SignInPopupBlocked,
	SignInNetworkError.Code:        SignInNetworkError,
	IdentityFailed.Code:            IdentityFailed,
	BackendAuthFailed.Code:         BackendAuthFailed,
	SignInTimeout.Code:             SignInTimeout,
	SignInInProgress.Code:          SignInInProgress,
	IdentityUnavailable.Code:       IdentityUnavailable,
	OnboardingSessionNotFound.Code: OnboardingSessionNotFound,
	OnboardingStepInvalid.Code:     OnboardingStepInvalid,
	OnboardingFieldInvalid.Code:    OnboardingFieldInvalid,
	PlanNotFound.Code:              PlanNotFound,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// IsSignInError 联合登录类错误，前端展示为可关闭、可重试的提示。
func IsSignInError(def Definition) bool {
	switch def.Code {
	case SignInCancelled.Code, SignInPopupBlocked.Code, SignInNetworkError.Code,
		IdentityFailed.Code, BackendAuthFailed.Code, SignInTimeout.Code,
		SignInInProgress.Code, IdentityUnavailable.Code:
		return true
	}
	return false
}

// As 从错误链中取出 Definition。
func As(err error) (Definition, bool) {
	var def Definition
	if stderrors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}
