package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/eczema-mitten/mittenpost/internal/catalog"
	"github.com/eczema-mitten/mittenpost/internal/config"
	"github.com/eczema-mitten/mittenpost/internal/manifest"
	"github.com/eczema-mitten/mittenpost/internal/service"
	"github.com/eczema-mitten/mittenpost/internal/slides"
	"github.com/eczema-mitten/mittenpost/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.config/mittenpost/mittenpost.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// closeStorage closes the store, logging rather than failing on error.
func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// initCatalog builds the product catalog, layering the optional keyword file
// from config on top of the built-in rules.
func initCatalog() (*catalog.Catalog, error) {
	cat := catalog.New()

	path := viper.GetString("catalog.path")
	if path == "" {
		return cat, nil
	}
	if err := cat.LoadFile(config.ExpandPath(path)); err != nil {
		return nil, fmt.Errorf("failed to load catalog file: %w", err)
	}
	return cat, nil
}

// loadSender reads the courier sender block from config. A missing sender is
// not an error: the pipeline skips the SpeedPost manifest without one.
func loadSender() *manifest.Sender {
	if !viper.IsSet("courier.sender") {
		return nil
	}

	sender := &manifest.Sender{
		Name:     viper.GetString("courier.sender.name"),
		Company:  viper.GetString("courier.sender.company"),
		Address1: viper.GetString("courier.sender.address1"),
		Address2: viper.GetString("courier.sender.address2"),
		Postcode: viper.GetString("courier.sender.postcode"),
		Country:  viper.GetString("courier.sender.country"),
		Phone:    viper.GetString("courier.sender.phone"),
		Email:    viper.GetString("courier.sender.email"),
	}
	if err := sender.Validate(); err != nil {
		slog.Warn("Courier sender config incomplete; SpeedPost manifest will be skipped", "error", err)
		return nil
	}
	return sender
}

// initRenderer builds the Slides renderer from config. Label rendering is a
// degradation path, so configuration problems log and return nil rather than
// abort the conversion.
func initRenderer(ctx context.Context) service.LabelRenderer {
	slidesConfig, err := config.LoadSlidesConfig()
	if err != nil {
		slog.Warn("Slides not configured; labels will be skipped", "error", err)
		return nil
	}

	renderer, err := slides.NewRenderer(ctx, *slidesConfig, slog.Default())
	if err != nil {
		slog.Warn("Failed to create Slides renderer; labels will be skipped", "error", err)
		return nil
	}
	return renderer
}

// sinceFromFlags resolves a --since date or a --days lookback into the fetch
// window start.
func sinceFromFlags(sinceStr string, days int) (time.Time, error) {
	if sinceStr != "" {
		since, err := time.Parse("2006-01-02", sinceStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid since date (use YYYY-MM-DD): %w", err)
		}
		return since, nil
	}
	if days <= 0 {
		days = 7
	}
	return time.Now().AddDate(0, 0, -days), nil
}
