package storage

import (
	"context"
	"fmt"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// RecordExportRun appends a run to the audit trail and fills in its ID.
func (s *SQLiteStorage) RecordExportRun(ctx context.Context, run *model.ExportRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}
	return s.recordExportRunTx(ctx, s.db, run)
}

func (s *SQLiteStorage) recordExportRunTx(ctx context.Context, q queryable, run *model.ExportRun) error {
	result, err := q.ExecContext(ctx, `
		INSERT INTO export_runs (
			started_at, source, total_orders,
			singapore, us_canada, international,
			manifest_path, courier_path, labels_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt,
		run.Source,
		run.TotalOrders,
		run.Singapore,
		run.USCanada,
		run.International,
		run.ManifestPath,
		run.CourierPath,
		run.LabelsURL)
	if err != nil {
		return fmt.Errorf("failed to record export run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run ID: %w", err)
	}
	run.ID = id
	return nil
}

// GetExportRuns returns the most recent runs, newest first. A limit of zero
// returns all runs.
func (s *SQLiteStorage) GetExportRuns(ctx context.Context, limit int) ([]model.ExportRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getExportRunsTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) getExportRunsTx(ctx context.Context, q queryable, limit int) ([]model.ExportRun, error) {
	query := `
		SELECT id, started_at, source, total_orders,
			singapore, us_canada, international,
			manifest_path, courier_path, labels_url
		FROM export_runs
		ORDER BY started_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.ExportRun
	for rows.Next() {
		var run model.ExportRun
		err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&run.Source,
			&run.TotalOrders,
			&run.Singapore,
			&run.USCanada,
			&run.International,
			&run.ManifestPath,
			&run.CourierPath,
			&run.LabelsURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate export runs: %w", err)
	}
	return runs, nil
}
