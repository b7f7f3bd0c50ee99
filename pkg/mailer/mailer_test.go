package mailer

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPClient_Send(t *testing.T) {
	c, err := NewSMTPClient(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "user",
		Password: "pass",
		From:     "Reformly <no-reply@reformly.app>",
	})
	require.NoError(t, err)

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	c.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	err = SendVerificationCode(context.Background(), c, "ann@example.com", "123456", 5)
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "no-reply@reformly.app", gotFrom)
	assert.Equal(t, []string{"ann@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: "+codeSubject+"\r\n")
	assert.Contains(t, gotMsg, "text/plain")
	assert.Contains(t, gotMsg, "123456")
}

func TestSMTPClient_Validation(t *testing.T) {
	_, err := NewSMTPClient(SMTPConfig{From: "a@b.c"})
	assert.Error(t, err)

	c, err := NewSMTPClient(SMTPConfig{Host: "h", Port: 25, From: "a@b.c"})
	require.NoError(t, err)
	assert.Error(t, c.Send(context.Background(), Message{Subject: "x"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Send(ctx, Message{To: "x@y.z", Subject: "s"}), context.Canceled)
}

func TestBuildMessage_HTML(t *testing.T) {
	msg := string(buildMessage("a@b.c", Message{To: "x@y.z", Subject: "s", Body: "<p>hi</p>"}))
	assert.Contains(t, msg, "text/html")
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()
	m.FailNext = true

	assert.Error(t, m.Send(context.Background(), Message{To: "a"}))
	assert.NoError(t, m.Send(context.Background(), Message{To: "b"}))

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.To)
	assert.Len(t, m.Calls, 2)
}
