package mailer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"Reformly/config"
	"Reformly/pkg/logger"
)

// Message 一封待发送的邮件，Body 以 "<" 开头时按 HTML 发送。
type Message struct {
	To      string
	Subject string
	Body    string
}

// Client 邮件客户端接口
type Client interface {
	Send(ctx context.Context, msg Message) error
	Provider() string
}

var (
	mailClient Client
	mailOnce   sync.Once
	mailErr    error
)

// Init 初始化邮件客户端
func Init() error {
	mailOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.MailerProvider {
		case "smtp":
			mailClient, mailErr = NewSMTPClient(SMTPConfig{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUsername,
				Password: cfg.SMTPPassword,
				From:     cfg.SMTPFrom,
			})
		case "mock":
			mailClient = NewMockClient()
		default:
			mailErr = fmt.Errorf("unsupported mailer provider: %s", cfg.MailerProvider)
		}

		if mailErr != nil {
			logger.Logger.Error("Failed to initialize mailer", zap.Error(mailErr))
			return
		}

		logger.Logger.Info("Mailer initialized successfully",
			zap.String("provider", cfg.MailerProvider),
		)
	})

	return mailErr
}

// SetClient 替换全局客户端，测试使用
func SetClient(c Client) {
	mailClient = c
}

func GetClient() Client {
	if mailClient == nil {
		panic("mailer not initialized, call mailer.Init() first")
	}
	return mailClient
}

func Send(ctx context.Context, msg Message) error {
	return GetClient().Send(ctx, msg)
}
