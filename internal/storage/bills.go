package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/common"
	"github.com/Veraticus/the-bills-must-flow/internal/model"
	"github.com/google/uuid"
)

// SaveBill inserts or updates a bill schedule. A missing ID is assigned.
func (s *SQLiteStorage) SaveBill(ctx context.Context, bill *model.Bill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}

	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now

	patternJSON, err := marshalPattern(bill.Schedule.Pattern)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bills (
			id, name, amount, currency, account_id, is_income,
			cadence, anchor_day, anchor_month, custom_pattern,
			next_due_date, reminder_window_days, last_reminder_sent_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			currency = excluded.currency,
			account_id = excluded.account_id,
			is_income = excluded.is_income,
			cadence = excluded.cadence,
			anchor_day = excluded.anchor_day,
			anchor_month = excluded.anchor_month,
			custom_pattern = excluded.custom_pattern,
			next_due_date = excluded.next_due_date,
			reminder_window_days = excluded.reminder_window_days,
			last_reminder_sent_at = excluded.last_reminder_sent_at,
			updated_at = excluded.updated_at
	`,
		bill.ID,
		bill.Name,
		bill.Amount,
		bill.Currency,
		bill.AccountID,
		bill.IsIncome,
		string(bill.Schedule.Cadence),
		nullableInt(bill.Schedule.AnchorDay),
		nullableInt(bill.Schedule.AnchorMonth),
		patternJSON,
		nullableTime(bill.NextDueDate),
		bill.ReminderWindowDays,
		nullablePtrTime(bill.LastReminderSentAt),
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save bill %s: %w", bill.Name, err)
	}

	return nil
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStorage) GetBill(ctx context.Context, id string) (*model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, billSelect+` WHERE id = ?`, id)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// ListBills returns all bill schedules ordered by next due date, with
// unscheduled bills last.
func (s *SQLiteStorage) ListBills(ctx context.Context) ([]model.Bill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, billSelect+` ORDER BY next_due_date IS NULL, next_due_date ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []model.Bill
	for rows.Next() {
		bill, scanErr := scanBill(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", scanErr)
		}
		bills = append(bills, *bill)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	return bills, nil
}

// UpdateBillNextDue advances a bill's next due date.
func (s *SQLiteStorage) UpdateBillNextDue(ctx context.Context, id string, nextDue time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE bills SET next_due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, nextDue, id)
	if err != nil {
		return fmt.Errorf("failed to update next due date: %w", err)
	}
	return requireRowAffected(result, id)
}

// MarkReminderSent records when a reminder was last delivered for a bill.
func (s *SQLiteStorage) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE bills SET last_reminder_sent_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return requireRowAffected(result, id)
}

// DeleteBill removes a bill schedule.
func (s *SQLiteStorage) DeleteBill(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return requireRowAffected(result, id)
}

const billSelect = `
	SELECT id, name, amount, currency, account_id, is_income,
		cadence, anchor_day, anchor_month, custom_pattern,
		next_due_date, reminder_window_days, last_reminder_sent_at,
		created_at, updated_at
	FROM bills`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*model.Bill, error) {
	var bill model.Bill
	var cadence string
	var anchorDay, anchorMonth sql.NullInt64
	var pattern sql.NullString
	var nextDue, lastReminder sql.NullTime

	if err := row.Scan(
		&bill.ID,
		&bill.Name,
		&bill.Amount,
		&bill.Currency,
		&bill.AccountID,
		&bill.IsIncome,
		&cadence,
		&anchorDay,
		&anchorMonth,
		&pattern,
		&nextDue,
		&bill.ReminderWindowDays,
		&lastReminder,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	); err != nil {
		return nil, err
	}

	bill.Schedule.Cadence = model.Cadence(cadence)
	if anchorDay.Valid {
		day := int(anchorDay.Int64)
		bill.Schedule.AnchorDay = &day
	}
	if anchorMonth.Valid {
		month := int(anchorMonth.Int64)
		bill.Schedule.AnchorMonth = &month
	}
	if pattern.Valid && pattern.String != "" {
		bill.Schedule.Pattern = model.ParseCustomPattern([]byte(pattern.String))
	}
	if nextDue.Valid {
		bill.NextDueDate = nextDue.Time
	}
	if lastReminder.Valid {
		t := lastReminder.Time
		bill.LastReminderSentAt = &t
	}

	return &bill, nil
}

func marshalPattern(pattern model.CustomPattern) (any, error) {
	if pattern.Kind == model.PatternNone {
		return nil, nil
	}
	raw, err := json.Marshal(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal custom pattern: %w", err)
	}
	return string(raw), nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullablePtrTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func requireRowAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bill %s: %w", id, common.ErrNotFound)
	}
	return nil
}
