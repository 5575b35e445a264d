package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eczema-mitten/mittenpost/internal/cli"
	"github.com/eczema-mitten/mittenpost/internal/shopify"
)

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch orders from the Shopify Admin API",
		Long: `Fetch orders directly from the Shopify Admin API and store them locally.

Unlike CSV exports, the API returns authoritative prices in the shop currency,
so fetched orders need no currency cross-checking.

Requires shopify.shop_domain and shopify.access_token in the config file, or
the MITTENPOST_SHOPIFY_* environment variables.

Examples:
  mittenpost fetch                     # last 7 days
  mittenpost fetch --days 30
  mittenpost fetch --since 2026-08-01
  mittenpost fetch --dry-run`,
		RunE: runFetch,
	}

	cmd.Flags().IntP("days", "d", 7, "Number of days to fetch")
	cmd.Flags().String("since", "", "Fetch orders created after this date (format: 2006-01-02)")
	cmd.Flags().Bool("dry-run", false, "Preview fetched orders without saving")

	_ = viper.BindPFlag("fetch.days", cmd.Flags().Lookup("days"))
	_ = viper.BindPFlag("fetch.since", cmd.Flags().Lookup("since"))
	_ = viper.BindPFlag("fetch.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	// Set up interrupt handling
	interruptHandler := cli.NewInterruptHandler(nil)
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), "Orders already saved are kept. Re-run: mittenpost fetch")

	dryRun := viper.GetBool("fetch.dry_run")

	client, err := shopify.NewClient(shopify.Config{
		ShopDomain:  viper.GetString("shopify.shop_domain"),
		AccessToken: viper.GetString("shopify.access_token"),
		APIVersion:  viper.GetString("shopify.api_version"),
		Currency:    viper.GetString("shopify.currency"),
	})
	if err != nil {
		return fmt.Errorf("failed to create Shopify client: %w", err)
	}

	since, err := sinceFromFlags(viper.GetString("fetch.since"), viper.GetInt("fetch.days"))
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle("Fetching orders from Shopify"),
		"since", since.Format("2006-01-02"))

	rows, err := client.GetOrders(ctx, since)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Fetch interrupted")
			return nil
		}
		return fmt.Errorf("failed to fetch orders: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Fetched %d order row(s)", len(rows))))

	cleaned, stats := shopify.Reconcile(rows, shopify.AmendKeepLast)
	if len(cleaned) == 0 {
		slog.Info("No paid orders in the fetch window", "rows", stats.Input)
		return nil
	}

	cat, err := initCatalog()
	if err != nil {
		return err
	}
	orders := cat.ClassifyRows(cleaned)
	displayOrderSummary(orders)

	if dryRun {
		slog.Info(cli.FormatWarning("Dry run mode - not saving to database"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStorage(store)

	if err := store.SaveOrders(ctx, orders); err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Saved %d order(s)", len(orders))))
	return nil
}
