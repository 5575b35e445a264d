package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/eczema-mitten/mittenpost/internal/common"
	"github.com/eczema-mitten/mittenpost/internal/model"
)

// SaveProductOverride pins a line-item name to a classification. Saving an
// existing name replaces its classification.
func (s *SQLiteStorage) SaveProductOverride(ctx context.Context, override *model.ProductOverride) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOverride(override); err != nil {
		return err
	}
	return s.saveProductOverrideTx(ctx, s.db, override)
}

func (s *SQLiteStorage) saveProductOverrideTx(ctx context.Context, q queryable, override *model.ProductOverride) error {
	if override.CreatedAt.IsZero() {
		override.CreatedAt = time.Now()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO product_overrides (line_item_name, material, size_band, bundle, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(line_item_name) DO UPDATE SET
			material = excluded.material,
			size_band = excluded.size_band,
			bundle = excluded.bundle,
			created_at = excluded.created_at
	`, override.LineItemName,
		string(override.Product.Material),
		string(override.Product.Size),
		override.Product.Bundle,
		override.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save product override: %w", err)
	}
	return nil
}

// GetProductOverrides returns all saved overrides, newest first.
func (s *SQLiteStorage) GetProductOverrides(ctx context.Context) ([]model.ProductOverride, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getProductOverridesTx(ctx, s.db)
}

func (s *SQLiteStorage) getProductOverridesTx(ctx context.Context, q queryable) ([]model.ProductOverride, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT line_item_name, material, size_band, bundle, created_at
		FROM product_overrides
		ORDER BY created_at DESC, line_item_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var overrides []model.ProductOverride
	for rows.Next() {
		var override model.ProductOverride
		var material, sizeBand string

		err := rows.Scan(
			&override.LineItemName,
			&material,
			&sizeBand,
			&override.Product.Bundle,
			&override.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product override: %w", err)
		}

		override.Product.Material = model.Material(material)
		override.Product.Size = model.SizeBand(sizeBand)
		overrides = append(overrides, override)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product overrides: %w", err)
	}
	return overrides, nil
}

// DeleteProductOverride removes the override for a line-item name.
func (s *SQLiteStorage) DeleteProductOverride(ctx context.Context, lineItemName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(lineItemName, "lineItemName"); err != nil {
		return err
	}
	return s.deleteProductOverrideTx(ctx, s.db, lineItemName)
}

func (s *SQLiteStorage) deleteProductOverrideTx(ctx context.Context, q queryable, lineItemName string) error {
	result, err := q.ExecContext(ctx,
		"DELETE FROM product_overrides WHERE line_item_name = ?", lineItemName)
	if err != nil {
		return fmt.Errorf("failed to delete product override: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: override %q", common.ErrNotFound, lineItemName)
	}
	return nil
}
