package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/chat-service/internal/config"
)

// Mailer delivers account mails. Sending is fire-and-forget from the caller's
// point of view; failures are logged, never surfaced to the client.
type Mailer interface {
	SendVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// NewMailer selects the implementation from configuration. Only the mock mode
// exists today; it logs the links a real sender would mail out.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	return &mockMailer{cfg: cfg, logger: logger}
}

type mockMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func (m *mockMailer) SendVerification(_ context.Context, to, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.cfg.FrontendURL, token)
	m.logger.Info("mock verification mail",
		zap.String("to", to),
		zap.String("from", m.cfg.From),
		zap.String("link", link))
	return nil
}

func (m *mockMailer) SendPasswordReset(_ context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.FrontendURL, token)
	m.logger.Info("mock password reset mail",
		zap.String("to", to),
		zap.String("from", m.cfg.From),
		zap.String("link", link))
	return nil
}
