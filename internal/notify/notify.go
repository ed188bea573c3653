// Package notify sends account notifications to users.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// Notifier tells a user their password was just changed.
type Notifier interface {
	PasswordChanged(ctx context.Context, email string, at time.Time) error
}

const passwordChangedSubject = "Your Athletix password was changed"

// SMTPConfig describes the outbound mail account.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string // also the From address
	Password string
	FromName string
}

// SMTPNotifier delivers notifications over authenticated SMTP (STARTTLS).
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

var _ Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	if cfg.FromName == "" {
		cfg.FromName = "Athletix Security"
	}
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

func (n *SMTPNotifier) PasswordChanged(ctx context.Context, email string, at time.Time) error {
	msg, err := n.passwordChangedMessage(email, at)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("notify: creating SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: sending password-changed mail: %w", err)
	}

	n.logger.Info("password change notification sent", slog.String("to", email))
	return nil
}

func (n *SMTPNotifier) passwordChangedMessage(to string, at time.Time) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(n.cfg.FromName, n.cfg.Username); err != nil {
		return nil, fmt.Errorf("notify: invalid sender %q: %w", n.cfg.Username, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("notify: invalid recipient %q: %w", to, err)
	}
	msg.Subject(passwordChangedSubject)
	msg.SetBodyString(mail.TypeTextPlain, passwordChangedBody(at))
	return msg, nil
}

func passwordChangedBody(at time.Time) string {
	return fmt.Sprintf(`Hello,

The password for your Athletix account was changed on %s.

If you made this change, no further action is needed.
If you did not, please reset your password immediately and contact our support team.

- Athletix Security Team
`, at.UTC().Format("January 2, 2006 at 15:04 MST"))
}

// LogNotifier records notifications in the log instead of sending them.
// Used when no SMTP account is configured.
type LogNotifier struct {
	logger *slog.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PasswordChanged(_ context.Context, email string, at time.Time) error {
	n.logger.Warn("SMTP not configured, password change notification not sent",
		slog.String("to", email),
		slog.Time("changed_at", at),
	)
	return nil
}
