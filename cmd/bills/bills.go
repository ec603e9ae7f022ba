package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/cli"
	"github.com/Veraticus/the-bills-must-flow/internal/frequency"
	"github.com/Veraticus/the-bills-must-flow/internal/model"
	"github.com/Veraticus/the-bills-must-flow/internal/service"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func billCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Manage tracked bills and income schedules",
	}

	cmd.AddCommand(billAddCmd())
	cmd.AddCommand(billListCmd())
	cmd.AddCommand(billRemoveCmd())

	return cmd
}

func billAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a bill or income schedule",
		Long: `Add a recurring obligation to track.

Examples:
  # Rent on the 1st of every month
  bills bill add --name Rent --amount 1200 --cadence monthly --anchor-day 1

  # Road tax due in January, June, and July
  bills bill add --name "Road Tax" --amount 180 --cadence custom --months 1,6,7 --anchor-day 15

  # Salary expected on the 28th
  bills bill add --name Salary --amount 2000 --cadence monthly --anchor-day 28 --income`,
		RunE: runBillAdd,
	}

	cmd.Flags().String("name", "", "Bill name (required)")
	cmd.Flags().Float64("amount", 0, "Amount per occurrence (required)")
	cmd.Flags().String("currency", "USD", "Currency code")
	cmd.Flags().String("cadence", "monthly", "Cadence (daily, weekly, biweekly, monthly, quarterly, yearly, custom)")
	cmd.Flags().Int("anchor-day", 0, "Day of month (or ISO weekday for weekly/biweekly)")
	cmd.Flags().Int("anchor-month", 0, "Month for quarterly/yearly schedules (1-12)")
	cmd.Flags().IntSlice("months", nil, "Months for a custom schedule (e.g. 1,6,7)")
	cmd.Flags().Int("reminder-days", 3, "Days before due date to start reminding")
	cmd.Flags().Bool("income", false, "Track as expected income instead of an expense")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runBillAdd(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	amount, _ := cmd.Flags().GetFloat64("amount")
	currency, _ := cmd.Flags().GetString("currency")
	cadence, _ := cmd.Flags().GetString("cadence")
	anchorDay, _ := cmd.Flags().GetInt("anchor-day")
	anchorMonth, _ := cmd.Flags().GetInt("anchor-month")
	months, _ := cmd.Flags().GetIntSlice("months")
	reminderDays, _ := cmd.Flags().GetInt("reminder-days")
	income, _ := cmd.Flags().GetBool("income")

	spec := model.ScheduleSpec{Cadence: model.Cadence(cadence)}
	if !spec.Cadence.Valid() {
		return fmt.Errorf("unknown cadence %q", cadence)
	}
	if anchorDay > 0 {
		spec.AnchorDay = &anchorDay
	}
	if anchorMonth > 0 {
		spec.AnchorMonth = &anchorMonth
	}
	if len(months) > 0 {
		raw, err := json.Marshal(map[string][]int{"months": months})
		if err != nil {
			return fmt.Errorf("failed to encode months: %w", err)
		}
		spec.Pattern = model.ParseCustomPattern(raw)
	}
	if spec.Cadence == model.CadenceCustom && spec.Pattern.Kind == model.PatternNone {
		return fmt.Errorf("custom cadence requires --months")
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	today := time.Now().UTC()
	bill := &model.Bill{
		Name:               name,
		Amount:             amount,
		Currency:           currency,
		Schedule:           spec,
		NextDueDate:        frequency.NextDueDate(spec, today, today),
		ReminderWindowDays: reminderDays,
		IsIncome:           income,
	}

	if err := store.SaveBill(ctx, bill); err != nil {
		return fmt.Errorf("failed to save bill: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Added %s, next due %s",
		cli.SuccessIcon, bill.Name, bill.NextDueDate.Format("2006-01-02"))))
	return nil
}

func billListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked bills with normalized amounts",
		RunE:  runBillList,
	}
}

func runBillList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	bills, err := store.ListBills(ctx)
	if err != nil {
		return fmt.Errorf("failed to list bills: %w", err)
	}

	if len(bills) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No bills tracked yet. Add one with 'bills bill add'."))
		return nil
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s Tracked bills", cli.BillIcon)))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Cadence", "Next Due", "Amount", "Monthly Eq", "Yearly"})

	var monthlyOut, monthlyIn float64
	for _, b := range bills {
		monthly := frequency.MonthlyEquivalent(b.Amount, b.Schedule)
		yearly := frequency.YearlyTotal(b.Amount, b.Schedule.Cadence)
		if b.Schedule.Cadence == model.CadenceCustom {
			yearly = b.Amount * float64(b.Schedule.Pattern.OccurrencesPerYear())
		}
		if b.IsIncome {
			monthlyIn += monthly
		} else {
			monthlyOut += monthly
		}

		nextDue := "-"
		if !b.NextDueDate.IsZero() {
			nextDue = b.NextDueDate.Format("2006-01-02")
		}

		name := b.Name
		if b.IsIncome {
			name += " (income)"
		}

		t.AppendRow(table.Row{
			shortID(b.ID),
			name,
			b.Schedule.Cadence,
			nextDue,
			b.FormattedAmount(),
			fmt.Sprintf("%.2f", monthly),
			fmt.Sprintf("%.2f", yearly),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", fmt.Sprintf("out %.2f / in %.2f", monthlyOut, monthlyIn), ""})

	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func billRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [id]",
		Short: "Remove a tracked bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			id, err := resolveBillID(cmd, store, args[0])
			if err != nil {
				return err
			}

			if err := store.DeleteBill(ctx, id); err != nil {
				return fmt.Errorf("failed to remove bill: %w", err)
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Removed bill %s", cli.SuccessIcon, args[0])))
			return nil
		},
	}
}

// shortID abbreviates a bill ID for display. IDs are normally UUIDs, but
// anything shorter than the prefix length is shown as-is.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// resolveBillID accepts either a full bill ID or the 8-character prefix
// shown by 'bill list'.
func resolveBillID(cmd *cobra.Command, store service.ScheduleStore, idOrPrefix string) (string, error) {
	if len(idOrPrefix) > 8 {
		return idOrPrefix, nil
	}

	bills, err := store.ListBills(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("failed to list bills: %w", err)
	}

	var match string
	for _, b := range bills {
		if len(b.ID) >= len(idOrPrefix) && b.ID[:len(idOrPrefix)] == idOrPrefix {
			if match != "" {
				return "", fmt.Errorf("bill ID prefix %q is ambiguous", idOrPrefix)
			}
			match = b.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no bill matches %q", idOrPrefix)
	}
	return match, nil
}
