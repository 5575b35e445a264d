package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eczema-mitten/mittenpost/internal/cli"
	"github.com/eczema-mitten/mittenpost/internal/common"
	"github.com/eczema-mitten/mittenpost/internal/config"
	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/service"
	"github.com/eczema-mitten/mittenpost/internal/shopify"
	"github.com/eczema-mitten/mittenpost/internal/slides"
)

func labelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels [orders.csv]",
		Short: "Render Google Slides shipping labels",
		Long: `Render shipping labels for Singapore orders into a Google Slides deck.

With a CSV argument the export is reconciled and classified first. Without one,
labels render from Singapore orders already stored in the local database.

Examples:
  mittenpost labels orders_export.csv
  mittenpost labels             # stored orders from the last 7 days
  mittenpost labels --days 30`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLabels,
	}

	cmd.Flags().IntP("days", "d", 7, "Days of stored orders to label (without a CSV argument)")
	cmd.Flags().String("amend-policy", "keep-last", "Amendment policy (keep-last, merge)")

	_ = viper.BindPFlag("labels.days", cmd.Flags().Lookup("days"))
	_ = viper.BindPFlag("labels.amend_policy", cmd.Flags().Lookup("amend-policy"))

	return cmd
}

func runLabels(cmd *cobra.Command, args []string) error {
	// Set up interrupt handling
	interruptHandler := cli.NewInterruptHandler(nil)
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), "The partially rendered deck stays in Google Drive.")

	var orders []model.Order
	var err error
	if len(args) == 1 {
		orders, err = labelOrdersFromFile(cmd, args[0])
	} else {
		orders, err = labelOrdersFromStorage(cmd)
	}
	if err != nil {
		return err
	}

	if len(orders) == 0 {
		slog.Info(cli.FormatWarning("No Singapore orders to label"))
		return nil
	}

	// Labels are the whole point here, so a missing Slides config is an
	// error rather than the convert command's warn-and-skip.
	slidesConfig, err := config.LoadSlidesConfig()
	if err != nil {
		return common.NewUserError("Google Slides is not configured. Run: mittenpost auth google", err)
	}
	renderer, err := slides.NewRenderer(ctx, *slidesConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create Slides renderer: %w", err)
	}

	labels := make([]model.ShippingLabel, 0, len(orders))
	for _, order := range orders {
		labels = append(labels, order.Label())
	}

	slog.Info(cli.FormatTitle("Rendering shipping labels"), "labels", len(labels))

	bar := cli.NewProgressBar(len(labels), "Rendering labels...")
	renderer.SetProgress(func(done, _ int) {
		if err := bar.Set(done); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	})

	url, err := renderer.Render(ctx, labels)
	if err != nil {
		return fmt.Errorf("failed to render labels: %w", err)
	}

	slog.Info(cli.FormatSuccess("Labels ready"))
	fmt.Printf("\n%s %s\n", cli.LabelIcon, url)
	return nil
}

// labelOrdersFromFile parses an export file and returns its Singapore bucket.
func labelOrdersFromFile(cmd *cobra.Command, path string) ([]model.Order, error) {
	ctx := cmd.Context()

	policy, err := shopify.ParseAmendPolicy(viper.GetString("labels.amend_policy"))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Orders file not found: %s", path), err)
	}
	defer func() { _ = f.Close() }()

	rows, err := shopify.NewReader().ParseFile(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cleaned, _ := shopify.Reconcile(rows, policy)

	cat, err := initCatalog()
	if err != nil {
		return nil, err
	}

	buckets := model.BucketByRegion(cat.ClassifyRows(cleaned))
	return buckets.Singapore, nil
}

// labelOrdersFromStorage returns stored Singapore orders from the lookback
// window.
func labelOrdersFromStorage(cmd *cobra.Command) ([]model.Order, error) {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStorage(store)

	days := viper.GetInt("labels.days")
	if days <= 0 {
		days = 7
	}
	start := time.Now().AddDate(0, 0, -days)

	return store.GetOrders(ctx, service.OrderFilter{
		Start:  &start,
		Region: model.RegionSingapore,
	})
}
