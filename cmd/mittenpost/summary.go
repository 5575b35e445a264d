package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eczema-mitten/mittenpost/internal/cli"
	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/report"
	"github.com/eczema-mitten/mittenpost/internal/service"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Report on stored orders by region and product",
		Long: `Print the region and product breakdown for orders in the local database.

Examples:
  mittenpost summary                # last 30 days
  mittenpost summary --days 7
  mittenpost summary --start 2026-08-01 --end 2026-08-31`,
		RunE: runSummary,
	}

	cmd.Flags().IntP("days", "d", 30, "Number of days to summarize")
	cmd.Flags().StringP("start", "s", "", "Start date (format: 2006-01-02)")
	cmd.Flags().StringP("end", "e", "", "End date (format: 2006-01-02)")

	_ = viper.BindPFlag("summary.days", cmd.Flags().Lookup("days"))
	_ = viper.BindPFlag("summary.start", cmd.Flags().Lookup("start"))
	_ = viper.BindPFlag("summary.end", cmd.Flags().Lookup("end"))

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	filter, err := summaryFilter()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStorage(store)

	orders, err := store.GetOrders(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	if len(orders) == 0 {
		slog.Info(cli.FormatWarning("No stored orders in the selected window"))
		slog.Info("Import orders first: mittenpost import <orders.csv> or mittenpost fetch")
		return nil
	}

	slog.Info(cli.FormatTitle("Order summary"),
		"orders", len(orders),
		"since", filter.Start.Format("2006-01-02"))

	fmt.Println(report.RenderBreakdown(model.BucketByRegion(orders)))
	return nil
}

// summaryFilter builds the storage filter from --start/--end, falling back to
// the --days lookback.
func summaryFilter() (service.OrderFilter, error) {
	startStr := viper.GetString("summary.start")
	endStr := viper.GetString("summary.end")

	if startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return service.OrderFilter{}, fmt.Errorf("invalid start date format: %w", err)
		}
		filter := service.OrderFilter{Start: &start}
		if endStr != "" {
			end, err := time.Parse("2006-01-02", endStr)
			if err != nil {
				return service.OrderFilter{}, fmt.Errorf("invalid end date format: %w", err)
			}
			// Make the end date inclusive
			end = end.AddDate(0, 0, 1)
			filter.End = &end
		}
		return filter, nil
	}

	days := viper.GetInt("summary.days")
	if days <= 0 {
		days = 30
	}
	start := time.Now().AddDate(0, 0, -days)
	return service.OrderFilter{Start: &start}, nil
}
