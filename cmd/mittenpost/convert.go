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
	"github.com/eczema-mitten/mittenpost/internal/pipeline"
	"github.com/eczema-mitten/mittenpost/internal/service"
	"github.com/eczema-mitten/mittenpost/internal/shopify"
)

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <orders.csv>",
		Short: "Convert a Shopify order export into carrier manifests",
		Long: `Convert a Shopify order export into shipment manifests and shipping labels.

The export is reconciled (amendments collapsed, unpaid rows dropped),
classified, and bucketed by region: international orders go to a SingPost
manifest, US/Canada orders to a SpeedPost manifest, and Singapore orders to a
Google Slides label deck.

Examples:
  mittenpost convert orders_export.csv
  mittenpost convert orders_export.csv --xlsx -o manifests/june.xlsx
  mittenpost convert orders_export.csv --no-labels --dry-run
  mittenpost convert orders_export.csv --save`,
		Args: cobra.ExactArgs(1),
		RunE: runConvert,
	}

	// Flags
	cmd.Flags().StringP("output", "o", "orders_converted.csv", "SingPost manifest output path")
	cmd.Flags().String("courier-output", "orders_courier.csv", "SpeedPost manifest output path")
	cmd.Flags().Bool("xlsx", false, "Write manifests as XLSX instead of CSV")
	cmd.Flags().String("amend-policy", "keep-last", "Amendment policy (keep-last, merge)")
	cmd.Flags().Bool("labels", true, "Render Google Slides labels for Singapore orders")
	cmd.Flags().Bool("no-labels", false, "Skip label rendering")
	cmd.Flags().Bool("dry-run", false, "Run the conversion without writing any output")
	cmd.Flags().Bool("save", false, "Persist converted orders to the local database")

	// Bind to viper
	_ = viper.BindPFlag("convert.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("convert.courier_output", cmd.Flags().Lookup("courier-output"))
	_ = viper.BindPFlag("convert.xlsx", cmd.Flags().Lookup("xlsx"))
	_ = viper.BindPFlag("convert.amend_policy", cmd.Flags().Lookup("amend-policy"))
	_ = viper.BindPFlag("convert.labels", cmd.Flags().Lookup("labels"))
	_ = viper.BindPFlag("convert.no_labels", cmd.Flags().Lookup("no-labels"))
	_ = viper.BindPFlag("convert.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("convert.save", cmd.Flags().Lookup("save"))

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ordersPath := args[0]

	if _, err := os.Stat(ordersPath); err != nil {
		return common.NewUserError(fmt.Sprintf("Orders file not found: %s", ordersPath), err)
	}

	policy, err := shopify.ParseAmendPolicy(viper.GetString("convert.amend_policy"))
	if err != nil {
		return err
	}

	cat, err := initCatalog()
	if err != nil {
		return err
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.ManifestPath = viper.GetString("convert.output")
	pcfg.CourierPath = viper.GetString("convert.courier_output")
	pcfg.AmendPolicy = policy
	pcfg.UseXLSX = viper.GetBool("convert.xlsx")
	pcfg.RenderLabels = viper.GetBool("convert.labels") && !viper.GetBool("convert.no_labels")
	pcfg.SaveOrders = viper.GetBool("convert.save")
	pcfg.DryRun = viper.GetBool("convert.dry_run")
	pcfg.Sender = loadSender()

	var renderer service.LabelRenderer
	if pcfg.RenderLabels && !pcfg.DryRun {
		renderer = initRenderer(ctx)
	}

	// Storage feeds stored review overrides into classification and records
	// the audit trail. The conversion itself works without it.
	store, err := initStorage(ctx)
	if err != nil {
		slog.Warn("Database unavailable; overrides and audit trail disabled", "error", err)
		store = nil
	} else {
		defer closeStorage(store)
	}

	slog.Info(cli.FormatTitle("Converting orders"), "file", ordersPath)

	converter := pipeline.New(cat, renderer, store, pcfg)
	result, err := converter.ConvertFile(ctx, ordersPath)
	if err != nil {
		return err
	}

	fmt.Println(result.Summary)

	content := fmt.Sprintf(`Input rows: %d
Amendment rows dropped: %d
Unpaid rows dropped: %d

Singapore: %d orders
US/Canada: %d orders
International: %d orders
Total pieces: %d

Completed in %s`,
		result.Stats.TotalRows,
		result.Stats.Amended,
		result.Stats.Dropped,
		result.Stats.Singapore,
		result.Stats.USCanada,
		result.Stats.International,
		result.Stats.TotalPieces,
		result.Stats.Duration.Round(time.Millisecond))
	slog.Info(cli.RenderBox("Conversion Summary", content))

	if pcfg.DryRun {
		slog.Info(cli.FormatWarning("Dry run - no files written"))
	}

	return nil
}
