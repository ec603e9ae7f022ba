package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/the-bills-must-flow/internal/cli"
	"github.com/Veraticus/the-bills-must-flow/internal/plaid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch transactions from Plaid",
		Long: `Fetch transaction history from your linked bank accounts via Plaid
and store it locally for pattern detection.

Requires plaid.client_id, plaid.secret, plaid.environment, and
plaid.access_token in the config file (or BILLS_PLAID_* environment
variables).`,
		RunE: runFetch,
	}

	cmd.Flags().Int("months", 6, "How many months of history to fetch")

	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	months, _ := cmd.Flags().GetInt("months")
	if months <= 0 {
		return fmt.Errorf("months must be positive")
	}

	client, err := plaid.NewClient(plaid.Config{
		ClientID:    viper.GetString("plaid.client_id"),
		Secret:      viper.GetString("plaid.secret"),
		Environment: viper.GetString("plaid.environment"),
		AccessToken: viper.GetString("plaid.access_token"),
	})
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	ctx := cmd.Context()
	end := time.Now()
	start := end.AddDate(0, -months, 0)

	transactions, err := client.GetTransactions(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	if len(transactions) == 0 {
		fmt.Println(cli.WarningStyle.Render("No transactions returned for the requested window"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTransactions(ctx, transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Fetched %d transactions covering %d months",
		cli.SuccessIcon, len(transactions), months)))
	return nil
}
