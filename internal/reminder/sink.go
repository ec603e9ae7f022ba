package reminder

import (
	"context"
	"log/slog"

	"github.com/Veraticus/the-bills-must-flow/internal/service"
)

// SlogSink writes notifications to the structured log. It is the default
// sink for CLI runs; real delivery channels implement the same interface.
type SlogSink struct{}

var _ service.NotificationSink = (*SlogSink)(nil)

// Notify logs the notification.
func (SlogSink) Notify(_ context.Context, n service.Notification) error {
	switch n.Kind {
	case service.NotificationOverdue:
		slog.Warn("Bill overdue",
			"bill", n.BillName,
			"amount", n.FormattedAmount,
			"days_overdue", n.Days)
	default:
		slog.Info("Bill due soon",
			"bill", n.BillName,
			"amount", n.FormattedAmount,
			"days_until_due", n.Days)
	}
	return nil
}
