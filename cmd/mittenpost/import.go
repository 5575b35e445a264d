package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eczema-mitten/mittenpost/internal/cli"
	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/shopify"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <orders.csv...>",
		Short: "Import order exports into the local database",
		Long: `Import Shopify order exports into the local database.

Each file is reconciled and classified before saving. Orders are deduplicated
by content hash, so re-importing an overlapping export is safe.

Examples:
  # Import single file
  mittenpost import ~/Downloads/orders_export.csv

  # Import several months at once
  mittenpost import ~/Downloads/orders_export_*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Preview import without saving")
	cmd.Flags().String("amend-policy", "keep-last", "Amendment policy (keep-last, merge)")

	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("import.amend_policy", cmd.Flags().Lookup("amend-policy"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun := viper.GetBool("import.dry_run")

	policy, err := shopify.ParseAmendPolicy(viper.GetString("import.amend_policy"))
	if err != nil {
		return err
	}

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info(cli.FormatTitle("Importing order exports"),
		"file_count", len(allFiles),
		"dry_run", dryRun)

	cat, err := initCatalog()
	if err != nil {
		return err
	}

	// Track orders across files, deduplicating by hash
	var allOrders []model.Order
	seen := make(map[string]bool)
	fileResults := make(map[string]int)

	reader := shopify.NewReader()
	for _, filePath := range allFiles {
		slog.Info("Processing file", "file", filepath.Base(filePath))

		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		rows, err := reader.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse export file", "file", filePath, "error", err)
			continue
		}

		cleaned, stats := shopify.Reconcile(rows, policy)
		if len(cleaned) == 0 {
			slog.Warn("No paid orders found in file", "file", filepath.Base(filePath))
			continue
		}

		added := 0
		for _, order := range cat.ClassifyRows(cleaned) {
			hash := order.Row.Hash
			if hash == "" {
				hash = order.Row.GenerateHash()
			}
			if !seen[hash] {
				seen[hash] = true
				allOrders = append(allOrders, order)
				added++
			}
		}

		fileResults[filepath.Base(filePath)] = added
		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"rows", stats.Input,
			"orders", len(cleaned),
			"added", added,
			"duplicates", len(cleaned)-added)
	}

	if len(allOrders) == 0 {
		slog.Warn("No orders found in any file")
		return nil
	}

	// Show summary
	fmt.Println("\n📁 File import summary:")
	for file, count := range fileResults {
		fmt.Printf("  - %s: %d orders\n", file, count)
	}
	displayOrderSummary(allOrders)

	if dryRun {
		slog.Info(cli.FormatWarning("Dry run mode - not saving to database"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStorage(store)

	if err := store.SaveOrders(ctx, allOrders); err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Imported %d order(s)", len(allOrders))))
	return nil
}

func displayOrderSummary(orders []model.Order) {
	buckets := model.BucketByRegion(orders)
	unrecognized := 0
	for _, order := range orders {
		if !order.Product.Recognized() {
			unrecognized++
		}
	}

	content := fmt.Sprintf(`Orders: %d
Singapore: %d
US/Canada: %d
International: %d
Total pieces: %d`,
		len(orders),
		len(buckets.Singapore),
		len(buckets.USCanada),
		len(buckets.International),
		buckets.TotalPieces())

	if unrecognized > 0 {
		content += fmt.Sprintf("\n\nUnrecognized line items: %d\nRun 'mittenpost review' to classify them.", unrecognized)
	}

	slog.Info(cli.RenderBox("Import Summary", content))
}
