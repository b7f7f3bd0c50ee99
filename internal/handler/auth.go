package handler

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"

	"Reformly/internal/model/dto"
	"Reformly/internal/service"
	"Reformly/pkg/response"
)

var errGoogleRequestEmpty = errors.New("id_token or client_error is required")

// SubmitEmail 提交邮箱并发送验证码；在第 2 步调用即为重新发送
// POST /v1/onboarding/sessions/:id/email
func SubmitEmail(ctx context.Context, c *app.RequestContext) {
	var req dto.SendEmailCodeRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	res, err := service.Auth().SubmitEmail(ctx, c.Param("id"), req.Email)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, res)
}

// VerifyEmail 校验邮箱验证码
// POST /v1/onboarding/sessions/:id/email/verify
func VerifyEmail(ctx context.Context, c *app.RequestContext) {
	var req dto.VerifyEmailCodeRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	res, err := service.Auth().VerifyEmail(ctx, c.Param("id"), req.Code)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, res)
}

// GoogleSignIn google 登录
// POST /v1/onboarding/sessions/:id/google
func GoogleSignIn(ctx context.Context, c *app.RequestContext) {
	var req dto.GoogleSignInRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	if req.IDToken == "" && req.ClientError == "" {
		response.BindError(ctx, c, errGoogleRequestEmpty)
		return
	}

	res, err := service.Auth().GoogleSignIn(ctx, c.Param("id"), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, res)
}

// RefreshToken 刷新访问令牌
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	pair, err := service.Auth().RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, pair)
}
