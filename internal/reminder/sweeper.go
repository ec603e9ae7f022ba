// Package reminder walks bill schedules, emits due and overdue
// notifications, and advances due dates that have passed.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/frequency"
	"github.com/Veraticus/the-bills-must-flow/internal/service"
)

// resendGap is how close to the due date a previously sent reminder must
// be before we suppress a resend. A reminder sent earlier than this is
// treated as stale and the bill is reminded again.
const resendGap = 7

// Sweeper runs reminder sweeps against a schedule store.
type Sweeper struct {
	store service.ScheduleStore
	sink  service.NotificationSink
}

// SweepStats summarizes one sweep.
type SweepStats struct {
	Checked   int
	Reminders int
	Overdue   int
	Advanced  int
}

// NewSweeper creates a sweeper over the given store and sink.
func NewSweeper(store service.ScheduleStore, sink service.NotificationSink) *Sweeper {
	return &Sweeper{store: store, sink: sink}
}

// Sweep processes every bill once for the given day. Bills without a next
// due date get one scheduled; overdue bills are notified and rolled
// forward; bills inside their reminder window are notified unless a
// recent reminder already went out.
func (s *Sweeper) Sweep(ctx context.Context, today time.Time) (SweepStats, error) {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return SweepStats{}, fmt.Errorf("failed to list bills: %w", err)
	}

	var stats SweepStats
	for i := range bills {
		bill := &bills[i]
		stats.Checked++

		if bill.NextDueDate.IsZero() {
			next := frequency.NextDueDate(bill.Schedule, today, today)
			if err := s.store.UpdateBillNextDue(ctx, bill.ID, next); err != nil {
				return stats, fmt.Errorf("failed to schedule bill %s: %w", bill.Name, err)
			}
			bill.NextDueDate = next
			stats.Advanced++
			slog.Debug("Scheduled bill", "bill", bill.Name, "next_due", next)
			continue
		}

		nextDue := bill.NextDueDate
		if today.After(nextDue) {
			daysOver := int(today.Sub(nextDue).Hours() / 24)
			if err := s.notify(ctx, service.NotificationOverdue, bill.ID, bill.Name, bill.FormattedAmount(), daysOver); err != nil {
				return stats, err
			}
			stats.Overdue++

			advanced := frequency.NextDueDate(bill.Schedule, nextDue, today)
			if err := s.store.UpdateBillNextDue(ctx, bill.ID, advanced); err != nil {
				return stats, fmt.Errorf("failed to advance bill %s: %w", bill.Name, err)
			}
			stats.Advanced++
			slog.Info("Advanced overdue bill", "bill", bill.Name, "was_due", nextDue, "next_due", advanced)
			continue
		}

		daysUntil := int(nextDue.Sub(today).Hours() / 24)
		if daysUntil > bill.ReminderWindowDays {
			continue
		}
		if bill.LastReminderSentAt != nil && !bill.LastReminderSentAt.Before(nextDue.AddDate(0, 0, -resendGap)) {
			continue
		}

		if err := s.notify(ctx, service.NotificationReminder, bill.ID, bill.Name, bill.FormattedAmount(), daysUntil); err != nil {
			return stats, err
		}
		if err := s.store.MarkReminderSent(ctx, bill.ID, today); err != nil {
			return stats, fmt.Errorf("failed to mark reminder for bill %s: %w", bill.Name, err)
		}
		stats.Reminders++
	}

	return stats, nil
}

func (s *Sweeper) notify(ctx context.Context, kind service.NotificationKind, id, name, amount string, days int) error {
	err := s.sink.Notify(ctx, service.Notification{
		Kind:            kind,
		BillID:          id,
		BillName:        name,
		FormattedAmount: amount,
		Days:            days,
	})
	if err != nil {
		return fmt.Errorf("failed to deliver %s notification for %s: %w", kind, name, err)
	}
	return nil
}
