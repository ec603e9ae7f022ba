package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/cli"
	"github.com/Veraticus/the-bills-must-flow/internal/detect"
	"github.com/Veraticus/the-bills-must-flow/internal/frequency"
	"github.com/Veraticus/the-bills-must-flow/internal/model"
	"github.com/Veraticus/the-bills-must-flow/internal/service"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect recurring income patterns in transaction history",
		Long: `Scan stored transaction history for recurring credits (salary,
dividends, regular transfers) and rank the candidates by confidence.

Candidates can be materialized into tracked bills with --materialize.`,
		RunE: runDetect,
	}

	cmd.Flags().Float64("min-amount", detect.DefaultMinAmount, "Ignore credits below this amount")
	cmd.Flags().Int("months", detect.DefaultLookbackMonths, "How many months of history to analyze")
	cmd.Flags().Bool("debug", false, "Show rejected candidate groups and why")
	cmd.Flags().Bool("materialize", false, "Save detected patterns as tracked bills")

	return cmd
}

func runDetect(cmd *cobra.Command, _ []string) error {
	minAmount, _ := cmd.Flags().GetFloat64("min-amount")
	months, _ := cmd.Flags().GetInt("months")
	debug, _ := cmd.Flags().GetBool("debug")
	materialize, _ := cmd.Flags().GetBool("materialize")

	detector, err := detect.New(detect.Config{
		MinAmount:      minAmount,
		LookbackMonths: months,
	})
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	today := time.Now().UTC()
	transactions, err := store.GetTransactionsByDateRange(ctx, today.AddDate(0, -months, 0), today)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	result := detector.Detect(transactions, today, debug)

	if len(result.Detected) == 0 {
		fmt.Println(cli.WarningStyle.Render("No recurring patterns detected"))
	} else {
		fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s Detected recurring income", cli.ChartIcon)))
		renderDetected(result.Detected)
	}

	if debug && len(result.Rejected) > 0 {
		fmt.Println(cli.SubtleStyle.Render("Rejected candidate groups:"))
		renderRejected(result.Rejected)
	}

	if materialize && len(result.Detected) > 0 {
		count, err := materializePatterns(cmd, store, result.Detected, today)
		if err != nil {
			return err
		}
		fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Saved %d bills", cli.SuccessIcon, count)))
	}

	return nil
}

func renderDetected(patterns []model.DetectedPattern) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Name", "Source", "Cadence", "Day", "Avg Amount", "Monthly Eq", "Seen", "Confidence"})

	for _, p := range patterns {
		day := p.ExpectedDayOfMonth
		spec := model.ScheduleSpec{Cadence: p.Cadence, AnchorDay: &day}
		t.AppendRow(table.Row{
			p.SuggestedName,
			p.SuggestedSource,
			p.Cadence,
			p.ExpectedDayOfMonth,
			fmt.Sprintf("%.2f", p.AverageAmount),
			fmt.Sprintf("%.2f", frequency.MonthlyEquivalent(p.AverageAmount, spec)),
			p.OccurrenceCount,
			fmt.Sprintf("%.0f%%", p.Confidence*100),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

func renderRejected(rejected []model.RejectedPattern) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Description", "Reason", "Seen", "Avg Interval"})

	for _, r := range rejected {
		t.AppendRow(table.Row{
			r.Description,
			string(r.Reason),
			r.OccurrenceCount,
			fmt.Sprintf("%.1fd", r.AverageIntervalDays),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

// materializePatterns converts detected patterns into tracked bills. The
// pattern's expected day anchors the schedule and the next due date is
// projected forward from the last observed occurrence.
func materializePatterns(cmd *cobra.Command, store service.ScheduleStore, patterns []model.DetectedPattern, today time.Time) (int, error) {
	ctx := cmd.Context()

	count := 0
	for _, p := range patterns {
		day := p.ExpectedDayOfMonth
		spec := model.ScheduleSpec{Cadence: p.Cadence, AnchorDay: &day}

		bill := &model.Bill{
			Name:               p.SuggestedName,
			Amount:             p.AverageAmount,
			Currency:           "USD",
			AccountID:          p.AccountID,
			Schedule:           spec,
			NextDueDate:        frequency.NextDueDate(spec, p.LastSeen, today),
			ReminderWindowDays: 3,
			IsIncome:           true,
		}

		if err := store.SaveBill(ctx, bill); err != nil {
			return count, fmt.Errorf("failed to save bill %s: %w", p.SuggestedName, err)
		}
		count++
	}

	return count, nil
}
