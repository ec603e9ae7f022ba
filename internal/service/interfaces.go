// Package service defines the interfaces between the scheduling core and
// its external collaborators: transaction history, schedule persistence,
// and notification delivery.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/model"
)

// NotificationKind distinguishes upcoming-bill reminders from overdue
// notices.
type NotificationKind string

// Notification kinds.
const (
	NotificationReminder NotificationKind = "reminder"
	NotificationOverdue  NotificationKind = "overdue"
)

// Notification is the payload handed to a NotificationSink. The core
// computes the day counts; formatting, localization, and delivery are
// owned by the sink.
type Notification struct {
	Kind            NotificationKind
	BillID          string
	BillName        string
	FormattedAmount string
	// Days until due for reminders, days past due for overdue notices.
	Days int
}

// TransactionSource provides read access to transaction history.
type TransactionSource interface {
	GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
}

// TransactionStore extends TransactionSource with ingestion.
type TransactionStore interface {
	TransactionSource
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
}

// ScheduleStore persists bill schedules and reminder bookkeeping.
type ScheduleStore interface {
	SaveBill(ctx context.Context, bill *model.Bill) error
	GetBill(ctx context.Context, id string) (*model.Bill, error)
	ListBills(ctx context.Context) ([]model.Bill, error)
	UpdateBillNextDue(ctx context.Context, id string, nextDue time.Time) error
	MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error
	DeleteBill(ctx context.Context, id string) error
}

// Storage is the full persistence contract implemented by the SQLite layer.
type Storage interface {
	TransactionStore
	ScheduleStore
	Migrate(ctx context.Context) error
	Close() error
}

// NotificationSink receives reminder and overdue notifications.
type NotificationSink interface {
	Notify(ctx context.Context, notification Notification) error
}

// TransactionFetcher pulls transactions from an external aggregator.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
}

// RetryOptions configures retry behavior for operations against external
// services.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
