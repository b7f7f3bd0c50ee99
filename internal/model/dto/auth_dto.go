package dto

// ========== Auth 相关 DTO ==========

// SendEmailCodeRequest 第 1 步提交邮箱
type SendEmailCodeRequest struct {
	Email string `json:"email" vd:"len($)>0"`
}

// SendEmailCodeResponse 验证码已发送
type SendEmailCodeResponse struct {
	Session   SessionSnapshot `json:"session"`
	ExpiresIn int             `json:"expires_in"`
}

// VerifyEmailCodeRequest 第 2 步提交验证码
type VerifyEmailCodeRequest struct {
	Code string `json:"code" vd:"len($)>0"`
}

// GoogleSignInRequest 浏览器完成 google 弹窗后转发 ID token；
// 弹窗失败时只带 client_error（popup_closed / popup_blocked / network_error ...）
type GoogleSignInRequest struct {
	IDToken     string `json:"id_token"`
	ClientError string `json:"client_error"`
}

// RefreshTokenRequest 刷新 token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" vd:"len($)>0"`
}

// TokenPair 访问令牌
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthUserSnapshot 登录后的用户概览
type AuthUserSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Provider  string `json:"provider"`
	IsNewUser bool   `json:"is_new_user"`
}

// SignInResponse 邮箱验证或 google 登录成功的响应
type SignInResponse struct {
	Tokens  TokenPair        `json:"tokens"`
	User    AuthUserSnapshot `json:"user"`
	Session SessionSnapshot  `json:"session"`
}
