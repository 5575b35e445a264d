// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// OrderFilter defines filtering options for order queries.
type OrderFilter struct {
	Start  *time.Time
	End    *time.Time
	Region model.Region // zero value matches all regions
	Limit  int
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Order operations
	SaveOrders(ctx context.Context, orders []model.Order) error
	GetOrders(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*model.Order, error)
	CountOrders(ctx context.Context) (int, error)

	// Product override operations
	SaveProductOverride(ctx context.Context, override *model.ProductOverride) error
	GetProductOverrides(ctx context.Context) ([]model.ProductOverride, error)
	DeleteProductOverride(ctx context.Context, lineItemName string) error
	GetUnrecognizedItems(ctx context.Context) ([]string, error)

	// Export run audit
	RecordExportRun(ctx context.Context, run *model.ExportRun) error
	GetExportRuns(ctx context.Context, limit int) ([]model.ExportRun, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// OrderSource fetches order rows from an external system, one row per line
// item to match the CSV export shape.
type OrderSource interface {
	GetOrders(ctx context.Context, since time.Time) ([]model.OrderRow, error)
}

// LabelRenderer renders shipping labels into a remote document and returns
// its URL. Renderers must perform no remote call when labels is empty.
type LabelRenderer interface {
	Render(ctx context.Context, labels []model.ShippingLabel) (string, error)
}

// ConvertStats shows the results of a conversion run.
type ConvertStats struct {
	Duration      time.Duration
	TotalRows     int
	Amended       int
	Dropped       int
	Singapore     int
	USCanada      int
	International int
	TotalPieces   int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
