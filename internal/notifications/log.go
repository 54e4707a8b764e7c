package notifications

import (
	"context"

	"go.uber.org/zap"

	"ecommerce-platform/internal/models"
)

// LogNotifier records confirmations in the application log. Used when
// neither SMTP nor RabbitMQ is configured, so checkout still reports who
// would have been notified.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Send logs the confirmation
func (n *LogNotifier) Send(_ context.Context, email, name string, ticket *models.Ticket) error {
	n.logger.Info("purchase confirmation",
		zap.String("email", email),
		zap.String("name", name),
		zap.String("ticket_code", ticket.Code),
		zap.Int("amount", ticket.Amount))
	return nil
}
