// Package pipeline orchestrates the conversion of order exports into carrier
// manifests and shipping labels.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/eczema-mitten/mittenpost/internal/catalog"
	"github.com/eczema-mitten/mittenpost/internal/manifest"
	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/report"
	"github.com/eczema-mitten/mittenpost/internal/service"
	"github.com/eczema-mitten/mittenpost/internal/shopify"
)

// Converter wires the conversion flow end to end: reconcile, classify, bucket
// by region, write manifests, render labels, summarize. The flow is
// single-threaded; every remote call is sequential and degradations log and
// continue rather than abort.
type Converter struct {
	catalog  *catalog.Catalog
	renderer service.LabelRenderer
	storage  service.Storage
	config   Config
}

// Config holds conversion options.
type Config struct {
	Sender       *manifest.Sender // nil skips the courier manifest
	ManifestPath string
	CourierPath  string
	AmendPolicy  shopify.AmendPolicy
	UseXLSX      bool
	RenderLabels bool
	SaveOrders   bool
	DryRun       bool
}

// DefaultConfig returns the default conversion options.
func DefaultConfig() Config {
	return Config{
		ManifestPath: "orders_converted.csv",
		CourierPath:  "orders_courier.csv",
		AmendPolicy:  shopify.AmendKeepLast,
		RenderLabels: true,
	}
}

// Result captures everything a conversion produced.
type Result struct {
	Summary      string
	ManifestPath string
	CourierPath  string
	LabelsURL    string
	Buckets      model.Buckets
	Stats        service.ConvertStats
}

// New creates a converter. Renderer and storage are optional: a nil renderer
// disables label rendering, a nil storage disables persistence.
func New(cat *catalog.Catalog, renderer service.LabelRenderer, store service.Storage, config Config) *Converter {
	return &Converter{
		catalog:  cat,
		renderer: renderer,
		storage:  store,
		config:   config,
	}
}

// ConvertFile runs the full conversion for one export file.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := shopify.NewReader().ParseFile(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return c.Convert(ctx, rows)
}

// Convert runs the conversion for already-parsed export rows.
func (c *Converter) Convert(ctx context.Context, rows []model.OrderRow) (*Result, error) {
	start := time.Now()

	cleaned, rstats := shopify.Reconcile(rows, c.config.AmendPolicy)
	if len(cleaned) == 0 {
		slog.Warn("No orders left after reconciliation", "input_rows", rstats.Input)
	}

	c.loadOverrides(ctx)
	orders := c.catalog.ClassifyRows(cleaned)
	buckets := model.BucketByRegion(orders)

	result := &Result{Buckets: buckets}
	result.Stats = service.ConvertStats{
		TotalRows:     rstats.Input,
		Amended:       rstats.Amended,
		Dropped:       rstats.Unpaid,
		Singapore:     len(buckets.Singapore),
		USCanada:      len(buckets.USCanada),
		International: len(buckets.International),
		TotalPieces:   buckets.TotalPieces(),
	}

	singpostRows, err := c.writeSingPost(buckets.International, result)
	if err != nil {
		return nil, err
	}
	speedpostRows, err := c.writeSpeedPost(buckets.USCanada, result)
	if err != nil {
		return nil, err
	}
	c.renderLabels(ctx, buckets.Singapore, result)

	result.Summary = report.Render(buckets, report.Result{
		SlidesURL:     result.LabelsURL,
		SingPostRows:  singpostRows,
		SpeedPostRows: speedpostRows,
	})
	result.Stats.Duration = time.Since(start)

	if err := c.persist(ctx, orders, result, start); err != nil {
		return nil, err
	}

	slog.Info("Conversion complete",
		"orders", len(orders),
		"singapore", result.Stats.Singapore,
		"us_canada", result.Stats.USCanada,
		"international", result.Stats.International,
		"duration", result.Stats.Duration)

	return result, nil
}

// loadOverrides feeds stored review decisions into the catalog so repeat
// offenders classify without another review pass.
func (c *Converter) loadOverrides(ctx context.Context) {
	if c.storage == nil {
		return
	}
	overrides, err := c.storage.GetProductOverrides(ctx)
	if err != nil {
		slog.Warn("Failed to load product overrides", "error", err)
		return
	}
	c.catalog.AddOverrides(overrides)
}

func (c *Converter) writeSingPost(orders []model.Order, result *Result) (int, error) {
	if len(orders) == 0 {
		slog.Info("No international orders; skipping SingPost manifest")
		return 0, nil
	}

	builder := manifest.NewSingPostBuilder()
	rows, err := builder.Build(orders)
	if err != nil {
		return 0, fmt.Errorf("failed to build SingPost manifest: %w", err)
	}

	if c.config.DryRun {
		slog.Info("Dry run; SingPost manifest not written", "rows", len(rows))
		return len(rows), nil
	}

	path, err := c.writeManifest(c.config.ManifestPath, builder.Template(), rows)
	if err != nil {
		return 0, err
	}
	result.ManifestPath = path
	return len(rows), nil
}

func (c *Converter) writeSpeedPost(orders []model.Order, result *Result) (int, error) {
	if len(orders) == 0 {
		slog.Info("No US/Canada orders; skipping SpeedPost manifest")
		return 0, nil
	}
	if c.config.Sender == nil {
		slog.Warn("US/Canada orders present but no sender configured; skipping SpeedPost manifest",
			"orders", len(orders))
		return 0, nil
	}

	builder, err := manifest.NewSpeedPostBuilder(*c.config.Sender)
	if err != nil {
		return 0, err
	}
	rows, err := builder.Build(orders)
	if err != nil {
		return 0, fmt.Errorf("failed to build SpeedPost manifest: %w", err)
	}

	if c.config.DryRun {
		slog.Info("Dry run; SpeedPost manifest not written", "rows", len(rows))
		return len(rows), nil
	}

	path, err := c.writeManifest(c.config.CourierPath, builder.Template(), rows)
	if err != nil {
		return 0, err
	}
	result.CourierPath = path
	return len(rows), nil
}

// writeManifest picks the writer from the configured format or the path
// extension, and returns the path actually written.
func (c *Converter) writeManifest(path string, template *manifest.Template, rows []manifest.Row) (string, error) {
	if c.config.UseXLSX || strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path = xlsxPath(path)
		return path, manifest.WriteXLSXFile(path, template, rows)
	}
	return path, manifest.WriteCSVFile(path, template, rows)
}

// xlsxPath swaps a .csv extension for .xlsx when the format flag overrides a
// CSV-shaped output path.
func xlsxPath(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return path[:len(path)-len(".csv")] + ".xlsx"
	}
	return path
}

// renderLabels renders Singapore labels. A renderer failure degrades to a
// missing labels URL; the manifests already written stay valid.
func (c *Converter) renderLabels(ctx context.Context, orders []model.Order, result *Result) {
	if len(orders) == 0 || c.renderer == nil || !c.config.RenderLabels || c.config.DryRun {
		return
	}

	labels := make([]model.ShippingLabel, 0, len(orders))
	for _, order := range orders {
		labels = append(labels, order.Label())
	}

	url, err := c.renderer.Render(ctx, labels)
	if err != nil {
		slog.Warn("Label rendering failed; continuing without labels", "error", err)
		return
	}
	result.LabelsURL = url
}

func (c *Converter) persist(ctx context.Context, orders []model.Order, result *Result, start time.Time) error {
	if c.storage == nil || c.config.DryRun {
		return nil
	}

	if c.config.SaveOrders && len(orders) > 0 {
		if err := c.storage.SaveOrders(ctx, orders); err != nil {
			return fmt.Errorf("failed to persist orders: %w", err)
		}
	}

	run := &model.ExportRun{
		StartedAt:     start,
		Source:        "csv",
		TotalOrders:   result.Stats.Singapore + result.Stats.USCanada + result.Stats.International,
		Singapore:     result.Stats.Singapore,
		USCanada:      result.Stats.USCanada,
		International: result.Stats.International,
		ManifestPath:  result.ManifestPath,
		CourierPath:   result.CourierPath,
		LabelsURL:     result.LabelsURL,
	}
	if err := c.storage.RecordExportRun(ctx, run); err != nil {
		// The conversion already succeeded; a failed audit write is not
		// worth aborting over.
		slog.Warn("Failed to record export run", "error", err)
	}
	return nil
}
