package auth

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer delivers password-reset messages.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, token string) error
}

// SendgridMailer sends reset mail through the SendGrid v3 API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendgridMailer(apiKey, from string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Task Dashboard", from),
	}
}

func (m *SendgridMailer) SendPasswordReset(ctx context.Context, to, name, token string) error {
	plain, html := resetBody(token)
	message := mail.NewSingleEmail(m.from, "Reset your password", mail.NewEmail(name, to), plain, html)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send reset mail: sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// LogMailer writes reset tokens to the log instead of sending mail. Used when
// no SendGrid key is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, _, token string) error {
	m.log.Info("password reset requested", zap.String("to", to), zap.String("token", token))
	return nil
}

func resetBody(token string) (string, string) {
	plain := fmt.Sprintf("Use this code to choose a new password: %s\nIt expires in one hour.", token)
	html := fmt.Sprintf("<p>Use this code to choose a new password:</p><p><strong>%s</strong></p><p>It expires in one hour.</p>", token)
	return plain, html
}
