package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPClient 通过 SMTP 发送邮件
type SMTPClient struct {
	cfg  SMTPConfig
	addr string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPClient(cfg SMTPConfig) (*SMTPClient, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host cannot be empty")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender address cannot be empty")
	}

	c := &SMTPClient{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		send: smtp.SendMail,
	}
	if cfg.Username != "" {
		c.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return c, nil
}

func (c *SMTPClient) Provider() string {
	return "smtp"
}

func (c *SMTPClient) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if msg.Subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	envelope := envelopeAddress(c.cfg.From)
	if err := c.send(c.addr, c.auth, envelope, []string{msg.To}, buildMessage(c.cfg.From, msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from string, msg Message) []byte {
	contentType := "text/plain; charset=UTF-8"
	if strings.HasPrefix(strings.TrimSpace(msg.Body), "<") {
		contentType = "text/html; charset=UTF-8"
	}

	return []byte("To: " + msg.To + "\r\n" +
		"From: " + from + "\r\n" +
		"Subject: " + msg.Subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: " + contentType + "\r\n" +
		"\r\n" +
		msg.Body + "\r\n")
}

// envelopeAddress "Name <a@b.c>" -> "a@b.c"
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}
