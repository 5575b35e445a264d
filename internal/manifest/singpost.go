package manifest

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// Fixed shipment values SingPost expects for every mitten parcel.
const (
	singpostArticleType = "AS"     // small packet
	singpostSizeCode    = "NS"     // non-standard
	singpostCategory    = "M"      // merchandise
	singpostService     = "IRAIRA" // registered airmail
	singpostCurrency    = "SGD"
	singpostHSTariff    = "392620"
	singpostOrigin      = "SG"
	singpostLengthCM    = 20
	singpostWidthCM     = 10
)

// Parcel figures by packaging. Bundles ship two mittens in a thicker pack.
const (
	singleWeightGrams = 250
	singleValueSGD    = 50
	singleHeightCM    = 2
	bundleWeightGrams = 500
	bundleValueSGD    = 100
	bundleHeightCM    = 4
)

// SingPostTemplate returns the ezy2ship bulk upload template. Header text
// must match the carrier's sheet byte for byte, including the doubled space
// in the "address line 2" and "Service code" headers and the unspaced "-*"
// on the currency header.
func SingPostTemplate() *Template {
	names := []string{
		"Send to business name line 1 (Max 35 characters) - *",
		"Send to business name line 2 (Max 35 characters)",
		"Send to address line 1 (Max 35 characters) - *",
		"Send to address line 2  (Max 35 characters) - *",
		"Send to address line 3 (Max 35 characters)",
		"Send to town (Max 30 characters) (Please spell in full)",
		"Send to state (Max 30 characters) (Please spell in full)",
		"Send to country (Max 2 characters) - *",
		"Send to postcode (Max 10 characters)",
		"Sender VAT/GST number (Max 50 characters)",
		"Sender Reference (Max 20 characters)",
		"Type of article - Please type in either LL (for letter) or AS (for small packet) - (Max 2 characters) - *",
		"Size - Please type in either RG (for Regular), LG (for Large) or NS (for Non-standard) - (Max 2 characters) - *",
		"Category of Shipment- Please type in either D (for Document), G (for Gift), M (for Merchandise), S (for Sample) or O (for others) (Max 1 character) - *",
		`If "Other", please describe (Max 50 characters)`,
		"Total Physical weight (min 1 gm) - *",
		"Item Length (cm)",
		"Item Width (cm)",
		"Item Height (cm)",
		"Service code - Refer to Service List sheet (Max 20 characters)  - *",
		"Currency type - for all item values (3 characters) -*",
	}
	for i := 1; i <= 3; i++ {
		names = append(names,
			fmt.Sprintf("Item content %d description (Max 50 characters) - *", i),
			fmt.Sprintf("Item content %d quantity", i),
			fmt.Sprintf("Total content %d weight (min 1 gm)", i),
			fmt.Sprintf("Item content %d total value (in declared currency type)", i),
			fmt.Sprintf("Item content %d HS tariff number (Max 6 characters)", i),
			fmt.Sprintf("Item content %d Country of origin (Max 2 characters) - *", i),
		)
	}

	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name}
	}
	return &Template{Name: "SingPost ezy2ship", Columns: columns}
}

// SingPostBuilder turns international orders into SingPost manifest rows.
type SingPostBuilder struct {
	template *Template
}

// NewSingPostBuilder creates a builder over the ezy2ship template.
func NewSingPostBuilder() *SingPostBuilder {
	return &SingPostBuilder{template: SingPostTemplate()}
}

// Template exposes the column set for writers.
func (b *SingPostBuilder) Template() *Template {
	return b.template
}

// Build produces one manifest row per order and logs the carrier-style
// validation warnings: truncated addresses and empty required cells.
func (b *SingPostBuilder) Build(orders []model.Order) ([]Row, error) {
	rows := make([]Row, 0, len(orders))
	for _, order := range orders {
		row := b.buildRow(order)
		if err := b.template.ValidateRow(row); err != nil {
			return nil, fmt.Errorf("order %s: %w", order.Row.Name, err)
		}
		rows = append(rows, row)
	}

	for name, count := range b.template.RequiredGaps(rows) {
		slog.Warn("Manifest rows missing a required field",
			"rows", count,
			"column", name)
	}

	return rows, nil
}

func (b *SingPostBuilder) buildRow(order model.Order) Row {
	ship := order.Row.Shipping

	if len(ship.Line1) > 35 || len(ship.Line2) > 35 {
		slog.Warn("Address truncated to fit manifest",
			"order", order.Row.Name)
	}

	// SingPost rejects an empty address line 2, so absent lines ship as NA.
	addressLine2 := "NA"
	if strings.TrimSpace(ship.Line2) != "" {
		addressLine2 = model.Clip(ship.Line2, 35)
	}

	weight := singleWeightGrams
	value := singleValueSGD
	height := singleHeightCM
	if order.Product.Bundle {
		weight = bundleWeightGrams
		value = bundleValueSGD
		height = bundleHeightCM
	}

	row := Row{
		model.Clip(ship.Name, 35),
		"",
		model.Clip(ship.Line1, 35),
		addressLine2,
		"",
		model.Clip(ship.City, 30),
		model.Clip(ship.State(), 30),
		model.Clip(ship.Country, 2),
		strings.ReplaceAll(model.Clip(ship.Zip, 10), "'", ""),
		"",
		model.Clip(order.Row.ID, 20),
		singpostArticleType,
		singpostSizeCode,
		singpostCategory,
		"",
		strconv.Itoa(weight),
		strconv.Itoa(singpostLengthCM),
		strconv.Itoa(singpostWidthCM),
		strconv.Itoa(height),
		singpostService,
		singpostCurrency,
		// Content 1 is the mittens; contents 2 and 3 stay blank.
		contentDescription(order.Product),
		strconv.Itoa(order.Row.Item.Quantity),
		strconv.Itoa(weight),
		strconv.Itoa(value),
		singpostHSTariff,
		singpostOrigin,
	}
	for i := 0; i < 2; i++ {
		row = append(row, "", "", "", "", "", "")
	}
	return row
}

// contentDescription writes the customs line, e.g. "Eczema mitten 1S Cotton"
// or "Eczema mitten 2(100cm) Cotton" for a kid-size bundle.
func contentDescription(product model.Product) string {
	return fmt.Sprintf("Eczema mitten %d%s %s",
		product.Quantity(), product.Size.Compressed(), product.Material)
}
