package shopify

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/eczema-mitten/mittenpost/internal/common"
	"github.com/eczema-mitten/mittenpost/internal/model"
)

// Column headers as they appear in a Shopify order export.
const (
	colName            = "Name"
	colID              = "Id"
	colEmail           = "Email"
	colFinancialStatus = "Financial Status"
	colPaidAt          = "Paid at"
	colLineitemName    = "Lineitem name"
	colLineitemQty     = "Lineitem quantity"
	colLineitemPrice   = "Lineitem price"
	colShipName        = "Shipping Name"
	colShipAddress1    = "Shipping Address1"
	colShipAddress2    = "Shipping Address2"
	colShipCity        = "Shipping City"
	colShipZip         = "Shipping Zip"
	colShipProvince    = "Shipping Province"
	colShipProvName    = "Shipping Province Name"
	colShipCountry     = "Shipping Country"
	colShipPhone       = "Shipping Phone"
)

// Reader parses Shopify order export CSV files.
type Reader struct{}

// NewReader creates a new order export reader.
func NewReader() *Reader {
	return &Reader{}
}

// ParseFile parses a Shopify order export and returns one row per CSV record.
// Exports vary by shop settings, so every column except Name is optional and
// missing cells read as empty strings. Amendment rows and unpaid rows are kept
// here; Reconcile collapses them.
func (r *Reader) ParseFile(ctx context.Context, reader io.Reader) ([]model.OrderRow, error) {
	cr := csv.NewReader(reader)
	// Shopify pads short rows inconsistently across export versions.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("order export is empty: %w", common.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read export header: %w", err)
	}

	idx := headerIndex(header)
	if _, ok := idx[colName]; !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingColumn, colName)
	}

	var rows []model.OrderRow
	var badQuantities int
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read export row %d: %w", len(rows)+2, err)
		}

		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		row := model.OrderRow{
			Name:            cell(colName),
			ID:              cell(colID),
			Email:           cell(colEmail),
			FinancialStatus: cell(colFinancialStatus),
			PaidAt:          cell(colPaidAt),
			Item: model.LineItem{
				Name:     cell(colLineitemName),
				Quantity: parseQuantity(cell(colLineitemQty), &badQuantities),
				Price:    parsePrice(cell(colLineitemPrice)),
			},
			Shipping: model.Address{
				Name:         cell(colShipName),
				Line1:        cell(colShipAddress1),
				Line2:        cell(colShipAddress2),
				City:         cell(colShipCity),
				Zip:          cell(colShipZip),
				Province:     cell(colShipProvince),
				ProvinceName: cell(colShipProvName),
				Country:      cell(colShipCountry),
				Phone:        cell(colShipPhone),
			},
		}
		row.Hash = row.GenerateHash()
		rows = append(rows, row)
	}

	if badQuantities > 0 {
		slog.Warn("Some line item quantities were unreadable, assumed 1",
			"rows", badQuantities)
	}
	slog.Info("Parsed order export",
		"total_rows", len(rows),
		"columns", len(header))

	return rows, nil
}

// headerIndex maps column names to positions. Shopify emits a UTF-8 BOM on
// the first header cell, so that is stripped before matching.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\uFEFF")
		name = strings.TrimSpace(name)
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

func parseQuantity(s string, bad *int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	qty, err := strconv.Atoi(s)
	if err != nil || qty < 1 {
		*bad++
		return 1
	}
	return qty
}

func parsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return price
}
