package model

import (
	"fmt"
	"time"
)

// Bill is a recurring obligation (expense or expected income) with a
// schedule and reminder settings.
type Bill struct {
	NextDueDate        time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LastReminderSentAt *time.Time
	ID                 string
	Name               string
	AccountID          string
	Currency           string
	Schedule           ScheduleSpec
	Amount             float64
	ReminderWindowDays int
	IsIncome           bool
}

// FormattedAmount renders the bill amount with its currency for
// notification payloads. Localization is owned by the delivery layer.
func (b *Bill) FormattedAmount() string {
	if b.Currency == "" {
		return fmt.Sprintf("%.2f", b.Amount)
	}
	return fmt.Sprintf("%.2f %s", b.Amount, b.Currency)
}
