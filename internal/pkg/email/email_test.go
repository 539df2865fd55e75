package email

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/attendly/attendly-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func TestSendPasswordReset(t *testing.T) {
	var sent []sentMail
	svc, err := newEmailService(config.SMTPConfig{
		Host:     "smtp.attendly.test",
		Port:     587,
		From:     "no-reply@attendly.io",
		FromName: "Attendly",
	}, func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}, 0)
	require.NoError(t, err)

	err = svc.SendPasswordReset("ana@attendly.io", "https://app.attendly.io/reset-password?token=abc", "2025-03-02 08:00 UTC")
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, "smtp.attendly.test:587", sent[0].addr)
	assert.Equal(t, []string{"ana@attendly.io"}, sent[0].to)
	assert.Contains(t, sent[0].msg, "Subject: Reset your Attendly password")
	assert.Contains(t, sent[0].msg, "https://app.attendly.io/reset-password?token=abc")
	assert.Contains(t, sent[0].msg, "2025-03-02 08:00 UTC")
}

func TestSendPasswordReset_RetriesThenFails(t *testing.T) {
	attempts := 0
	svc, err := newEmailService(config.SMTPConfig{Host: "smtp.attendly.test", Port: 25},
		func(string, smtp.Auth, string, []string, []byte) error {
			attempts++
			return errors.New("connection refused")
		}, 0)
	require.NoError(t, err)

	err = svc.SendPasswordReset("ana@attendly.io", "https://x", "soon")
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, maxRetries, attempts)
}

func TestSendPasswordReset_SkipsWithoutHost(t *testing.T) {
	svc, err := newEmailService(config.SMTPConfig{}, func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send called without an SMTP host")
		return nil
	}, 0)
	require.NoError(t, err)

	assert.NoError(t, svc.SendPasswordReset("ana@attendly.io", "https://x", "soon"))
}
