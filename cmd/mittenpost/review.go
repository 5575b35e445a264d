package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eczema-mitten/mittenpost/internal/tui"
)

func reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Classify unrecognized line items interactively",
		Long: `Review line items the classifier could not match to a material and size.

Each classification is saved as a product override and applied automatically
on future convert, import and fetch runs.`,
		RunE: runReview,
	}
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStorage(store)

	return tui.Run(ctx, store)
}
