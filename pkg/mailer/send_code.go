package mailer

import (
	"context"
	"fmt"
)

const codeSubject = "Your Reformly verification code"

// SendVerificationCode 发送邮箱验证码
func SendVerificationCode(ctx context.Context, client Client, email, code string, ttlMinutes int) error {
	body := fmt.Sprintf(
		"Your verification code is %s.\r\n\r\nIt expires in %d minutes. If you did not request it, you can ignore this email.",
		code, ttlMinutes,
	)

	return client.Send(ctx, Message{
		To:      email,
		Subject: codeSubject,
		Body:    body,
	})
}
