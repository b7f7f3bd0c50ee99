package identity

import (
	"Reformly/pkg/errors"
)

// 浏览器端 firebase 登录失败时上报的错误码
const (
	CodePopupClosed      = "auth/popup-closed-by-user"
	CodeCancelledRequest = "auth/cancelled-popup-request"
	CodePopupBlocked     = "auth/popup-blocked"
	CodeNetworkFailed    = "auth/network-request-failed"
)

// ClientError 把浏览器上报的错误码映射为可重试的业务错误，空串返回 nil。
func ClientError(code string) error {
	switch code {
	case "":
		return nil
	case CodePopupClosed, CodeCancelledRequest:
		return errors.SignInCancelled
	case CodePopupBlocked:
		return errors.SignInPopupBlocked
	case CodeNetworkFailed:
		return errors.SignInNetworkError
	default:
		return errors.IdentityFailed
	}
}

// Cancelled 用户主动关闭弹窗属于正常结果，只记 debug 日志。
func Cancelled(err error) bool {
	def, ok := errors.As(err)
	return ok && def.Code == errors.SignInCancelled.Code
}
