package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/common"
	"github.com/Veraticus/the-bills-must-flow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "bills.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewSQLiteStorage_RejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupTestDB(t)
	// Re-running must be a no-op at the expected version.
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSaveTransactions_DeduplicatesByHash(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	txn := model.Transaction{
		ID:        "txn-1",
		Name:      "SALARY JT055236A",
		Amount:    2000,
		Date:      testDate(2026, 1, 28),
		AccountID: "acct-1",
		Kind:      model.KindCredit,
	}

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{txn}))
	// Same content, different ID; the hash collision keeps it out.
	dup := txn
	dup.ID = "txn-1-again"
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{dup}))

	got, err := store.GetTransactionsByDateRange(ctx, testDate(2026, 1, 1), testDate(2026, 12, 31))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "txn-1", got[0].ID)
	assert.Equal(t, model.KindCredit, got[0].Kind)
	assert.NotEmpty(t, got[0].Hash)
}

func TestGetTransactionsByDateRange_InclusiveAndOrdered(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "a", Name: "A", Amount: -10, Date: testDate(2026, 3, 1), AccountID: "acct"},
		{ID: "b", Name: "B", Amount: 20, Date: testDate(2026, 2, 1), AccountID: "acct"},
		{ID: "c", Name: "C", Amount: 30, Date: testDate(2026, 4, 1), AccountID: "acct"},
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	got, err := store.GetTransactionsByDateRange(ctx, testDate(2026, 2, 1), testDate(2026, 3, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	// Kind was derived from the amount sign on save.
	assert.Equal(t, model.KindCredit, got[0].Kind)
	assert.Equal(t, model.KindDebit, got[1].Kind)

	_, err = store.GetTransactionsByDateRange(ctx, testDate(2026, 5, 1), testDate(2026, 4, 1))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestSaveBill_RoundTrip(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	day := 15
	month := 6
	bill := &model.Bill{
		Name:     "Road Tax",
		Amount:   180,
		Currency: "GBP",
		Schedule: model.ScheduleSpec{
			Cadence:     model.CadenceCustom,
			AnchorDay:   &day,
			AnchorMonth: &month,
			Pattern:     model.ParseCustomPattern([]byte(`{"months":[1,6,7]}`)),
		},
		NextDueDate:        testDate(2026, 6, 15),
		ReminderWindowDays: 5,
	}

	require.NoError(t, store.SaveBill(ctx, bill))
	require.NotEmpty(t, bill.ID)

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Road Tax", got.Name)
	assert.Equal(t, model.CadenceCustom, got.Schedule.Cadence)
	require.NotNil(t, got.Schedule.AnchorDay)
	assert.Equal(t, 15, *got.Schedule.AnchorDay)
	assert.Equal(t, model.PatternMonthSet, got.Schedule.Pattern.Kind)
	assert.Equal(t, []int{1, 6, 7}, got.Schedule.Pattern.Months)
	assert.True(t, got.NextDueDate.Equal(testDate(2026, 6, 15)))
	assert.Nil(t, got.LastReminderSentAt)
	assert.Equal(t, 5, got.ReminderWindowDays)
}

func TestSaveBill_UpdatesExisting(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	bill := &model.Bill{
		Name:     "Rent",
		Amount:   1200,
		Currency: "USD",
		Schedule: model.ScheduleSpec{Cadence: model.CadenceMonthly},
	}
	require.NoError(t, store.SaveBill(ctx, bill))

	bill.Amount = 1250
	require.NoError(t, store.SaveBill(ctx, bill))

	bills, err := store.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.InDelta(t, 1250.0, bills[0].Amount, 0.001)
}

func TestSaveBill_RejectsInvalid(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	err := store.SaveBill(ctx, &model.Bill{Name: "", Schedule: model.ScheduleSpec{Cadence: model.CadenceMonthly}})
	assert.ErrorIs(t, err, ErrInvalidBill)

	err = store.SaveBill(ctx, &model.Bill{Name: "Bad", Schedule: model.ScheduleSpec{Cadence: "fortnightly"}})
	assert.ErrorIs(t, err, ErrInvalidBill)
}

func TestListBills_OrdersByNextDue(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	later := &model.Bill{Name: "Later", Amount: 10, Schedule: model.ScheduleSpec{Cadence: model.CadenceMonthly}, NextDueDate: testDate(2026, 9, 1)}
	sooner := &model.Bill{Name: "Sooner", Amount: 10, Schedule: model.ScheduleSpec{Cadence: model.CadenceMonthly}, NextDueDate: testDate(2026, 8, 1)}
	unscheduled := &model.Bill{Name: "Unscheduled", Amount: 10, Schedule: model.ScheduleSpec{Cadence: model.CadenceMonthly}}

	for _, b := range []*model.Bill{later, sooner, unscheduled} {
		require.NoError(t, store.SaveBill(ctx, b))
	}

	bills, err := store.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 3)
	assert.Equal(t, "Sooner", bills[0].Name)
	assert.Equal(t, "Later", bills[1].Name)
	assert.Equal(t, "Unscheduled", bills[2].Name)
}

func TestUpdateBillNextDueAndMarkReminder(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	bill := &model.Bill{Name: "Power", Amount: 90, Schedule: model.ScheduleSpec{Cadence: model.CadenceMonthly}}
	require.NoError(t, store.SaveBill(ctx, bill))

	due := testDate(2026, 9, 28)
	require.NoError(t, store.UpdateBillNextDue(ctx, bill.ID, due))

	sent := testDate(2026, 9, 25)
	require.NoError(t, store.MarkReminderSent(ctx, bill.ID, sent))

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, got.NextDueDate.Equal(due))
	require.NotNil(t, got.LastReminderSentAt)
	assert.True(t, got.LastReminderSentAt.Equal(sent))

	assert.ErrorIs(t, store.UpdateBillNextDue(ctx, "missing", due), common.ErrNotFound)
	assert.ErrorIs(t, store.MarkReminderSent(ctx, "missing", sent), common.ErrNotFound)
}

func TestDeleteBill(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	bill := &model.Bill{Name: "Gym", Amount: 40, Schedule: model.ScheduleSpec{Cadence: model.CadenceMonthly}}
	require.NoError(t, store.SaveBill(ctx, bill))
	require.NoError(t, store.DeleteBill(ctx, bill.ID))

	_, err := store.GetBill(ctx, bill.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, store.DeleteBill(ctx, bill.ID), common.ErrNotFound)
}
