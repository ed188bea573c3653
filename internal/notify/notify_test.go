package notify

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPasswordChangedBody(t *testing.T) {
	at := time.Date(2025, time.March, 4, 9, 30, 0, 0, time.UTC)

	body := passwordChangedBody(at)

	assert.Contains(t, body, "March 4, 2025 at 09:30 UTC")
	assert.Contains(t, body, "contact our support team")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), "Athletix Security Team"))
}

func TestPasswordChangedMessage(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "security@athletix.test"}, testLogger())

	msg, err := n.passwordChangedMessage("ana@example.com", time.Now())
	require.NoError(t, err)

	to := msg.GetAddrHeader(mail.HeaderTo)
	require.Len(t, to, 1)
	assert.Equal(t, "ana@example.com", to[0].Address)

	from, err := msg.GetSender(true)
	require.NoError(t, err)
	assert.Contains(t, from, "Athletix Security")
	assert.Contains(t, from, "security@athletix.test")
}

func TestPasswordChangedMessage_BadRecipient(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Username: "security@athletix.test"}, testLogger())

	_, err := n.passwordChangedMessage("not an address", time.Now())
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(testLogger())
	assert.NoError(t, n.PasswordChanged(context.Background(), "ana@example.com", time.Now()))
}
