package email

import (
	"context"

	"github.com/machwork/identity/internal/observability/logger"
)

// LogSender escribe el correo al log en vez de enviarlo. Se usa cuando
// no hay host SMTP configurado (dev, tests de integración).
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _, textBody string) error {
	logger.Named("email").Info("email (log only)",
		logger.String("to", to),
		logger.String("subject", subject),
		logger.String("body", textBody),
	)
	return nil
}
