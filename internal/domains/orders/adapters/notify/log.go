package notify

import (
	"context"
	"log/slog"

	"github.com/Apurer/canteen-orders/internal/domains/orders/ports"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier writes notifications to the structured log. It is the default
// sink when no broker or workflow engine is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, recipient int64, message string) error {
	n.logger.InfoContext(ctx, "notification", slog.Int64("recipient", recipient), slog.String("message", message))
	return nil
}
