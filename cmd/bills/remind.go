package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/cli"
	"github.com/Veraticus/the-bills-must-flow/internal/reminder"
	"github.com/spf13/cobra"
)

func remindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run a reminder sweep over tracked bills",
		Long: `Check every tracked bill: emit reminders for bills entering their
reminder window, flag overdue bills, and roll missed due dates forward.

Intended to run daily from cron or a systemd timer.`,
		RunE: runRemind,
	}

	cmd.Flags().String("as-of", "", "Sweep as of this date (YYYY-MM-DD, default today)")

	return cmd
}

func runRemind(cmd *cobra.Command, _ []string) error {
	asOf, _ := cmd.Flags().GetString("as-of")

	today := time.Now().UTC()
	if asOf != "" {
		parsed, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of date %q: %w", asOf, err)
		}
		today = parsed
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	sweeper := reminder.NewSweeper(store, reminder.SlogSink{})
	stats, err := sweeper.Sweep(ctx, today)
	if err != nil {
		return fmt.Errorf("reminder sweep failed: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Sweep complete: %d bills checked, %d reminders, %d overdue, %d advanced",
		cli.BellIcon, stats.Checked, stats.Reminders, stats.Overdue, stats.Advanced)))
	return nil
}
