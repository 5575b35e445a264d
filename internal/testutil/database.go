// Package testutil provides shared test helpers: an isolated database and
// canned order fixtures.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/service"
	"github.com/eczema-mitten/mittenpost/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database with migrations applied
// and cleanup registered.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.SeedOrders(testutil.Orders("SG", "SG", "US"))
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedOrders saves the orders, failing the test on error.
func (db *TestDB) SeedOrders(orders []model.Order) {
	db.t.Helper()
	if err := db.Storage.SaveOrders(context.Background(), orders); err != nil {
		db.t.Fatalf("failed to seed orders: %v", err)
	}
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}

// Orders builds one classified Cotton S order per country code, numbered from
// #1000. Countries pick the region bucket, so Orders("SG", "US", "JP") yields
// one order per bucket.
func Orders(countries ...string) []model.Order {
	orders := make([]model.Order, 0, len(countries))
	for i, country := range countries {
		orders = append(orders, Order(fmt.Sprintf("#%d", 1000+i), country))
	}
	return orders
}

// Order builds a single classified order shipping to the given country.
func Order(number, country string) model.Order {
	row := model.OrderRow{
		Name:            number,
		Email:           "buyer@example.com",
		FinancialStatus: "paid",
		PaidAt:          "2026-08-20 10:15:00 +0800",
		Item: model.LineItem{
			Name:     "Cotton Eczema Mitten - S (150-160cm)",
			Quantity: 1,
			Price:    29.90,
		},
		Shipping: model.Address{
			Name:    "Jo Tan",
			Line1:   "1 Example Way",
			City:    "Singapore",
			Zip:     "238801",
			Country: country,
			Phone:   "+65 8000 0000",
		},
	}
	row.Hash = row.GenerateHash()
	return model.Order{
		Row:     row,
		Product: model.Product{Material: model.MaterialCotton, Size: model.SizeS},
		Region:  model.RegionForCountry(country),
	}
}
