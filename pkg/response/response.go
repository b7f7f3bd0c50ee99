package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"Reformly/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// StatusOf 根据错误码映射 HTTP 状态码，未知错误一律 500。
func StatusOf(err error) int {
	def, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case errors.OTPRateLimited.Code, errors.TooManyRequests.Code:
		return http.StatusTooManyRequests // 429
	case errors.SignInInProgress.Code:
		return http.StatusConflict // 409
	case errors.SignInTimeout.Code:
		return http.StatusGatewayTimeout // 504
	case errors.IdentityFailed.Code, errors.BackendAuthFailed.Code,
		errors.SignInNetworkError.Code, errors.IdentityUnavailable.Code:
		return http.StatusBadGateway // 502
	case errors.SignInCancelled.Code, errors.SignInPopupBlocked.Code,
		errors.AuthCodeInvalid.Code, errors.VerificationCodeExpired.Code,
		errors.VerificationCodeInvalid.Code, errors.InvalidEmail.Code,
		errors.InvalidUserID.Code, errors.OnboardingStepInvalid.Code,
		errors.OnboardingFieldInvalid.Code, errors.PlanNotFound.Code,
		"INVALID_REQUEST":
		return http.StatusBadRequest // 400
	case errors.Unauthorized.Code:
		return http.StatusUnauthorized // 401
	case errors.CSRFInvalid.Code:
		return http.StatusForbidden // 403
	case errors.OnboardingSessionNotFound.Code, errors.UserNotFound.Code:
		return http.StatusNotFound // 404
	default:
		return http.StatusInternalServerError // 500
	}
}

func buildDetail(err error, details map[string]interface{}) ErrorDetail {
	def, ok := errors.As(err)
	if !ok {
		// 内部错误不向外暴露原始信息
		return ErrorDetail{Code: "INTERNAL_ERROR", Message: "Internal server error", Details: details}
	}

	if errors.IsSignInError(def) {
		if details == nil {
			details = map[string]interface{}{}
		}
		details["retryable"] = true
	}

	return ErrorDetail{Code: def.Code, Message: def.Message, Details: details}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	c.JSON(StatusOf(err), ErrorResponse{Error: buildDetail(err, details)})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// NoContent 返回 204 No Content
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
