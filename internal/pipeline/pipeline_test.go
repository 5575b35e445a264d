package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eczema-mitten/mittenpost/internal/catalog"
	"github.com/eczema-mitten/mittenpost/internal/manifest"
	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/slides"
	"github.com/eczema-mitten/mittenpost/internal/testutil"
)

func testRow(name, country, item string, status string) model.OrderRow {
	row := model.OrderRow{
		Name:            name,
		Email:           "buyer@example.com",
		FinancialStatus: status,
		PaidAt:          "2026-08-20 10:15:00 +0800",
		Item:            model.LineItem{Name: item, Quantity: 1, Price: 29.90},
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
	return row
}

func testSender() *manifest.Sender {
	return &manifest.Sender{
		Name:     "Mitten Post Pte Ltd",
		Address1: "71 Ayer Rajah Crescent",
		Postcode: "139951",
		Country:  "SG",
		Phone:    "+65 6000 0000",
	}
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ManifestPath = filepath.Join(dir, "orders_converted.csv")
	cfg.CourierPath = filepath.Join(dir, "orders_courier.csv")
	cfg.Sender = testSender()
	return cfg
}

func TestConvert_FullFlow(t *testing.T) {
	ctx := context.Background()
	renderer := slides.NewMockRenderer("https://docs.google.com/presentation/d/mock/edit")
	conv := New(catalog.New(), renderer, nil, testConfig(t))

	rows := []model.OrderRow{
		testRow("#1001", "SG", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
		testRow("#1002", "US", "Tencel Eczema Mitten - M (160-170cm)", "paid"),
		testRow("#1003", "JP", "Cotton Eczema Mitten Bundle - L (170-180cm)", "paid"),
		testRow("#1004", "SG", "Cotton Eczema Mitten - XS (140-150cm)", ""),
	}

	result, err := conv.Convert(ctx, rows)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Stats.TotalRows)
	assert.Equal(t, 1, result.Stats.Dropped)
	assert.Equal(t, 1, result.Stats.Singapore)
	assert.Equal(t, 1, result.Stats.USCanada)
	assert.Equal(t, 1, result.Stats.International)
	assert.Equal(t, 4, result.Stats.TotalPieces) // bundle counts two pieces

	// Both manifests written, labels rendered.
	assert.FileExists(t, result.ManifestPath)
	assert.FileExists(t, result.CourierPath)
	assert.Equal(t, "https://docs.google.com/presentation/d/mock/edit", result.LabelsURL)
	assert.Equal(t, 1, renderer.RenderCallCount)
	require.Len(t, renderer.LastLabels, 1)
	assert.Equal(t, "#1001", renderer.LastLabels[0].OrderName)

	assert.Contains(t, result.Summary, "SINGAPORE")
	assert.Contains(t, result.Summary, "#1003")
	assert.Contains(t, result.Summary, result.LabelsURL)
}

func TestConvert_AmendmentsCollapse(t *testing.T) {
	ctx := context.Background()
	conv := New(catalog.New(), nil, nil, testConfig(t))

	rows := []model.OrderRow{
		testRow("#1001", "JP", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
		testRow("#1001", "JP", "Cotton Eczema Mitten - M (160-170cm)", "paid"),
	}

	result, err := conv.Convert(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Amended)
	require.Len(t, result.Buckets.International, 1)
	// Keep-last policy keeps the amended line item.
	assert.Equal(t, model.SizeM, result.Buckets.International[0].Product.Size)
}

func TestConvert_ZeroSingaporeOrdersSkipsRenderer(t *testing.T) {
	ctx := context.Background()
	renderer := slides.NewMockRenderer("https://example.com")
	conv := New(catalog.New(), renderer, nil, testConfig(t))

	rows := []model.OrderRow{
		testRow("#1001", "JP", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
	}

	result, err := conv.Convert(ctx, rows)
	require.NoError(t, err)
	assert.Empty(t, result.LabelsURL)
	assert.Zero(t, renderer.RenderCallCount)
}

func TestConvert_RendererFailureDegrades(t *testing.T) {
	ctx := context.Background()
	renderer := slides.NewMockRenderer("https://example.com")
	renderer.SetRenderError(assert.AnError)
	conv := New(catalog.New(), renderer, nil, testConfig(t))

	rows := []model.OrderRow{
		testRow("#1001", "SG", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
		testRow("#1002", "JP", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
	}

	result, err := conv.Convert(ctx, rows)
	require.NoError(t, err)
	// Labels are gone but the manifest survived.
	assert.Empty(t, result.LabelsURL)
	assert.FileExists(t, result.ManifestPath)
}

func TestConvert_EmptyBucketsWriteNothing(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	conv := New(catalog.New(), nil, nil, cfg)

	rows := []model.OrderRow{
		testRow("#1001", "SG", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
	}

	result, err := conv.Convert(ctx, rows)
	require.NoError(t, err)
	assert.Empty(t, result.ManifestPath)
	assert.Empty(t, result.CourierPath)
	assert.NoFileExists(t, cfg.ManifestPath)
	assert.NoFileExists(t, cfg.CourierPath)
	assert.Contains(t, result.Summary, "No international orders (excluding SG, US, CA) to export to SingPost")
}

func TestConvert_NoSenderSkipsCourier(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Sender = nil
	conv := New(catalog.New(), nil, nil, cfg)

	rows := []model.OrderRow{
		testRow("#1001", "US", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
	}

	result, err := conv.Convert(ctx, rows)
	require.NoError(t, err)
	assert.Empty(t, result.CourierPath)
	assert.NoFileExists(t, cfg.CourierPath)
}

func TestConvert_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.DryRun = true
	renderer := slides.NewMockRenderer("https://example.com")
	db := testutil.SetupTestDB(t)
	conv := New(catalog.New(), renderer, db.Storage, cfg)

	rows := []model.OrderRow{
		testRow("#1001", "SG", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
		testRow("#1002", "JP", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
	}

	result, err := conv.Convert(ctx, rows)
	require.NoError(t, err)
	assert.NoFileExists(t, cfg.ManifestPath)
	assert.Zero(t, renderer.RenderCallCount)
	assert.Empty(t, result.LabelsURL)

	count, err := db.Storage.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	runs, err := db.Storage.GetExportRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestConvert_XLSXOutput(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.UseXLSX = true
	conv := New(catalog.New(), nil, nil, cfg)

	rows := []model.OrderRow{
		testRow("#1001", "JP", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
	}

	result, err := conv.Convert(ctx, rows)
	require.NoError(t, err)
	want := strings.TrimSuffix(cfg.ManifestPath, ".csv") + ".xlsx"
	assert.FileExists(t, want)
	assert.Equal(t, want, result.ManifestPath)
}

func TestConvert_PersistsOrdersAndRun(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.SaveOrders = true
	db := testutil.SetupTestDB(t)
	conv := New(catalog.New(), nil, db.Storage, cfg)

	rows := []model.OrderRow{
		testRow("#1001", "SG", "Cotton Eczema Mitten - S (150-160cm)", "paid"),
		testRow("#1002", "JP", "Tencel Eczema Mitten - M (160-170cm)", "paid"),
	}

	_, err := conv.Convert(ctx, rows)
	require.NoError(t, err)

	count, err := db.Storage.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	runs, err := db.Storage.GetExportRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "csv", runs[0].Source)
	assert.Equal(t, 2, runs[0].TotalOrders)
	assert.Equal(t, 1, runs[0].Singapore)
	assert.Equal(t, 1, runs[0].International)
}

func TestConvert_AppliesStoredOverrides(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	require.NoError(t, db.Storage.SaveProductOverride(ctx, &model.ProductOverride{
		LineItemName: "Mystery Gift Set",
		Product:      model.Product{Material: model.MaterialTencel, Size: model.SizeXL},
	}))

	conv := New(catalog.New(), nil, db.Storage, testConfig(t))
	rows := []model.OrderRow{
		testRow("#1001", "SG", "Mystery Gift Set", "paid"),
	}

	result, err := conv.Convert(ctx, rows)
	require.NoError(t, err)
	require.Len(t, result.Buckets.Singapore, 1)
	assert.Equal(t, model.MaterialTencel, result.Buckets.Singapore[0].Product.Material)
	assert.Equal(t, model.SizeXL, result.Buckets.Singapore[0].Product.Size)
}

func TestConvertFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "orders_export.csv")
	csvData := "Name,Email,Financial Status,Lineitem quantity,Lineitem name,Lineitem price,Shipping Name,Shipping Address1,Shipping City,Shipping Zip,Shipping Country,Shipping Phone\n" +
		"#1001,a@example.com,paid,1,Cotton Eczema Mitten - S (150-160cm),29.90,Jo Tan,1 Example Way,Singapore,238801,SG,+65 8000 0000\n"
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o600))

	conv := New(catalog.New(), nil, nil, testConfig(t))
	result, err := conv.ConvertFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Singapore)

	_, err = conv.ConvertFile(ctx, filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
