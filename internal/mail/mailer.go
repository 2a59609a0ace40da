package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/config"
)

// Mailer sends plain-text mail through the configured SMTP relay. With no
// server configured it logs and drops messages instead of failing callers.
type Mailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// NewMailer constructs a mailer.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Send delivers one message. Delivery failures are returned for the caller
// to log; they must never propagate to request handlers.
func (m *Mailer) Send(address, subject, body string) error {
	if strings.TrimSpace(m.cfg.Server) == "" {
		m.logger.Debug("mail server not configured, dropping message",
			zap.String("to", address),
			zap.String("subject", subject))
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.Sender, address, subject, body)

	addr := m.cfg.Server
	if !strings.Contains(addr, ":") {
		addr += ":25"
	}
	return smtp.SendMail(addr, nil, m.cfg.Sender, []string{address}, []byte(msg))
}
