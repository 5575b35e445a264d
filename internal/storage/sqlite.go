package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// queryable abstracts *sql.DB and *sql.Tx so query helpers can run inside or
// outside an explicit transaction.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite performs best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{tx: tx, storage: s}, nil
}

// sqliteTransaction wraps a database transaction and exposes the storage
// methods scoped to it.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

// Commit commits the transaction.
func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

// Rollback rolls back the transaction.
func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// SaveOrders saves orders within the transaction.
func (t *sqliteTransaction) SaveOrders(ctx context.Context, orders []model.Order) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOrders(orders); err != nil {
		return err
	}
	return t.storage.saveOrdersTx(ctx, t.tx, orders)
}

// GetOrders retrieves orders within the transaction.
func (t *sqliteTransaction) GetOrders(ctx context.Context, filter service.OrderFilter) ([]model.Order, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getOrdersTx(ctx, t.tx, filter)
}

// GetOrderByNumber retrieves an order within the transaction.
func (t *sqliteTransaction) GetOrderByNumber(ctx context.Context, number string) (*model.Order, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(number, "number"); err != nil {
		return nil, err
	}
	return t.storage.getOrderByNumberTx(ctx, t.tx, number)
}

// CountOrders counts orders within the transaction.
func (t *sqliteTransaction) CountOrders(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.countOrdersTx(ctx, t.tx)
}

// SaveProductOverride saves an override within the transaction.
func (t *sqliteTransaction) SaveProductOverride(ctx context.Context, override *model.ProductOverride) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOverride(override); err != nil {
		return err
	}
	return t.storage.saveProductOverrideTx(ctx, t.tx, override)
}

// GetProductOverrides retrieves overrides within the transaction.
func (t *sqliteTransaction) GetProductOverrides(ctx context.Context) ([]model.ProductOverride, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getProductOverridesTx(ctx, t.tx)
}

// DeleteProductOverride deletes an override within the transaction.
func (t *sqliteTransaction) DeleteProductOverride(ctx context.Context, lineItemName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(lineItemName, "lineItemName"); err != nil {
		return err
	}
	return t.storage.deleteProductOverrideTx(ctx, t.tx, lineItemName)
}

// GetUnrecognizedItems retrieves unrecognized items within the transaction.
func (t *sqliteTransaction) GetUnrecognizedItems(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getUnrecognizedItemsTx(ctx, t.tx)
}

// RecordExportRun records a run within the transaction.
func (t *sqliteTransaction) RecordExportRun(ctx context.Context, run *model.ExportRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}
	return t.storage.recordExportRunTx(ctx, t.tx, run)
}

// GetExportRuns retrieves runs within the transaction.
func (t *sqliteTransaction) GetExportRuns(ctx context.Context, limit int) ([]model.ExportRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getExportRunsTx(ctx, t.tx, limit)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
