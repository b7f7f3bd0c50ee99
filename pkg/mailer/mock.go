package mailer

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"Reformly/pkg/logger"
)

// MockClient 开发环境使用，只记录不发送
type MockClient struct {
	mu    sync.Mutex
	Calls []Message

	// FailNext 置为 true 时，下一次调用返回 mock 错误并自动复位
	FailNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Calls: make([]Message, 0),
	}
}

func (m *MockClient) Provider() string {
	return "mock"
}

func (m *MockClient) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, msg)

	if m.FailNext {
		m.FailNext = false
		return errors.New("mock mail send failure")
	}

	logger.Logger.Debug("Mock mail sent",
		zap.String("subject", msg.Subject),
	)
	return nil
}

// Last 最近一次发送的邮件
func (m *MockClient) Last() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Calls) == 0 {
		return Message{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
