package mail

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer logs messages instead of delivering them. Used in development
// when no SMTP relay is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer builds the logging stub.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send records the message at info level and always succeeds.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("outbound email (log mailer)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("html", msg.HTML),
	)
	return nil
}
