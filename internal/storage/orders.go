package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/eczema-mitten/mittenpost/internal/common"
	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/service"
)

// orderColumns is the column list shared by every order query so scans stay
// aligned with a single source of truth.
const orderColumns = `hash, number, name, shopify_id, email, financial_status, paid_at,
	item_name, item_quantity, item_price,
	ship_name, ship_line1, ship_line2, ship_city, ship_zip,
	ship_province, ship_province_name, ship_country, ship_phone,
	material, size_band, bundle, region`

// SaveOrders saves classified orders to the database. Rows are deduplicated
// by content hash; re-saving an existing row refreshes its classification.
func (s *SQLiteStorage) SaveOrders(ctx context.Context, orders []model.Order) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOrders(orders); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveOrdersTx(ctx, tx, orders); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveOrdersTx(ctx context.Context, tx *sql.Tx, orders []model.Order) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO orders (
			hash, number, name, shopify_id, email, financial_status, paid_at,
			item_name, item_quantity, item_price,
			ship_name, ship_line1, ship_line2, ship_city, ship_zip,
			ship_province, ship_province_name, ship_country, ship_phone,
			material, size_band, bundle, region
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			material = excluded.material,
			size_band = excluded.size_band,
			bundle = excluded.bundle,
			region = excluded.region
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, order := range orders {
		row := order.Row
		if row.Hash == "" {
			row.Hash = row.GenerateHash()
		}

		_, err = stmt.ExecContext(ctx,
			row.Hash,
			row.Number(),
			row.Name,
			row.ID,
			row.Email,
			row.FinancialStatus,
			row.PaidAt,
			row.Item.Name,
			row.Item.Quantity,
			row.Item.Price,
			row.Shipping.Name,
			row.Shipping.Line1,
			row.Shipping.Line2,
			row.Shipping.City,
			row.Shipping.Zip,
			row.Shipping.Province,
			row.Shipping.ProvinceName,
			row.Shipping.Country,
			row.Shipping.Phone,
			string(order.Product.Material),
			string(order.Product.Size),
			order.Product.Bundle,
			string(order.Region),
		)
		if err != nil {
			return fmt.Errorf("failed to save order %s: %w", row.Name, err)
		}
	}

	return nil
}

// GetOrders retrieves orders matching the filter, in import order.
func (s *SQLiteStorage) GetOrders(ctx context.Context, filter service.OrderFilter) ([]model.Order, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getOrdersTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) getOrdersTx(ctx context.Context, q queryable, filter service.OrderFilter) ([]model.Order, error) {
	var conditions []string
	var args []any

	if filter.Start != nil {
		conditions = append(conditions, "imported_at >= ?")
		args = append(args, filter.Start)
	}
	if filter.End != nil {
		conditions = append(conditions, "imported_at <= ?")
		args = append(args, filter.End)
	}
	if filter.Region != "" {
		conditions = append(conditions, "region = ?")
		args = append(args, string(filter.Region))
	}

	query := "SELECT " + orderColumns + " FROM orders"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY imported_at, number"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanOrders(rows)
}

// GetOrderByNumber retrieves the first order row for an order number. The
// leading "#" is optional.
func (s *SQLiteStorage) GetOrderByNumber(ctx context.Context, number string) (*model.Order, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(number, "number"); err != nil {
		return nil, err
	}
	return s.getOrderByNumberTx(ctx, s.db, number)
}

func (s *SQLiteStorage) getOrderByNumberTx(ctx context.Context, q queryable, number string) (*model.Order, error) {
	normalized := strings.TrimPrefix(strings.TrimSpace(number), "#")

	rows, err := q.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE number = ? ORDER BY imported_at LIMIT 1",
		normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: order %s", common.ErrNotFound, number)
	}
	return &orders[0], nil
}

// CountOrders returns the total number of stored order rows.
func (s *SQLiteStorage) CountOrders(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.countOrdersTx(ctx, s.db)
}

func (s *SQLiteStorage) countOrdersTx(ctx context.Context, q queryable) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// GetUnrecognizedItems returns the distinct line-item names that failed
// material or size classification, for the review flow.
func (s *SQLiteStorage) GetUnrecognizedItems(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getUnrecognizedItemsTx(ctx, s.db)
}

func (s *SQLiteStorage) getUnrecognizedItemsTx(ctx context.Context, q queryable) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT DISTINCT item_name FROM orders
		WHERE material = ? OR size_band = ?
		ORDER BY item_name
	`, string(model.MaterialUnknown), string(model.SizeUnknown))
	if err != nil {
		return nil, fmt.Errorf("failed to query unrecognized items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan item name: %w", err)
		}
		items = append(items, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func scanOrders(rows *sql.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		var order model.Order
		var material, sizeBand, region string

		err := rows.Scan(
			&order.Row.Hash,
			new(string), // normalized number is derived from name
			&order.Row.Name,
			&order.Row.ID,
			&order.Row.Email,
			&order.Row.FinancialStatus,
			&order.Row.PaidAt,
			&order.Row.Item.Name,
			&order.Row.Item.Quantity,
			&order.Row.Item.Price,
			&order.Row.Shipping.Name,
			&order.Row.Shipping.Line1,
			&order.Row.Shipping.Line2,
			&order.Row.Shipping.City,
			&order.Row.Shipping.Zip,
			&order.Row.Shipping.Province,
			&order.Row.Shipping.ProvinceName,
			&order.Row.Shipping.Country,
			&order.Row.Shipping.Phone,
			&material,
			&sizeBand,
			&order.Product.Bundle,
			&region,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		order.Product.Material = model.Material(material)
		order.Product.Size = model.SizeBand(sizeBand)
		order.Region = model.Region(region)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}
