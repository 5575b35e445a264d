package manifest

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// SpeedPost shipment values for the North America lane. Courier weights are
// declared in kilograms, unlike the airmail manifest.
const (
	speedpostService  = "SPIECO" // economy air parcel
	speedpostCategory = "M"
	singleWeightKG    = "0.25"
	bundleWeightKG    = "0.50"
)

// Sender identifies the shop on courier manifests. SpeedPost prints the
// return address from these cells rather than from the account profile.
type Sender struct {
	Name     string
	Company  string
	Address1 string
	Address2 string
	Postcode string
	Country  string
	Phone    string
	Email    string
}

// Validate checks the fields SpeedPost requires on every row.
func (s *Sender) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("sender name is required")
	}
	if strings.TrimSpace(s.Address1) == "" {
		return fmt.Errorf("sender address is required")
	}
	if strings.TrimSpace(s.Postcode) == "" {
		return fmt.Errorf("sender postcode is required")
	}
	if strings.TrimSpace(s.Phone) == "" {
		return fmt.Errorf("sender contact number is required")
	}
	return nil
}

// SpeedPostTemplate returns the SpeedPost International bulk order template
// used for US and Canada shipments.
func SpeedPostTemplate() *Template {
	names := []string{
		"Sender name (Max 35 characters) - *",
		"Sender company (Max 35 characters)",
		"Sender address line 1 (Max 35 characters) - *",
		"Sender address line 2 (Max 35 characters)",
		"Sender postcode (Max 10 characters) - *",
		"Sender country (Max 2 characters) - *",
		"Sender contact number (Max 20 characters) - *",
		"Sender email (Max 50 characters)",
		"Receiver name (Max 35 characters) - *",
		"Receiver company (Max 35 characters)",
		"Receiver address line 1 (Max 35 characters) - *",
		"Receiver address line 2 (Max 35 characters)",
		"Receiver address line 3 (Max 35 characters)",
		"Receiver city (Max 30 characters) - *",
		"Receiver state (Max 30 characters)",
		"Receiver postcode (Max 10 characters) - *",
		"Receiver country (Max 2 characters) - *",
		"Receiver contact number (Max 20 characters) - *",
		"Receiver email (Max 50 characters)",
		"Order reference (Max 20 characters)",
		"Service code (Max 20 characters) - *",
		"Delivery instructions (Max 100 characters)",
		"Number of packages - *",
		"Total weight (kg) - *",
		"Package length (cm)",
		"Package width (cm)",
		"Package height (cm)",
		"Currency (3 characters) - *",
		"Declared value - *",
		"Customs category (Max 1 character) - *",
		"Incoterms (Max 3 characters)",
		"Item 1 description (Max 50 characters) - *",
		"Item 1 quantity - *",
		"Item 1 weight (gm)",
		"Item 1 value - *",
		"Item 1 HS code (Max 10 characters)",
		"Item 1 origin country (Max 2 characters) - *",
		"Item 2 description (Max 50 characters)",
		"Item 2 quantity",
		"Item 2 weight (gm)",
		"Item 2 value",
		"Item 2 HS code (Max 10 characters)",
	}

	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name}
	}
	return &Template{Name: "SpeedPost International", Columns: columns}
}

// SpeedPostBuilder turns US and Canada orders into SpeedPost manifest rows.
type SpeedPostBuilder struct {
	template *Template
	sender   Sender
}

// NewSpeedPostBuilder creates a builder stamping sender onto every row.
func NewSpeedPostBuilder(sender Sender) (*SpeedPostBuilder, error) {
	if err := sender.Validate(); err != nil {
		return nil, fmt.Errorf("invalid courier sender: %w", err)
	}
	if sender.Country == "" {
		sender.Country = "SG"
	}
	return &SpeedPostBuilder{template: SpeedPostTemplate(), sender: sender}, nil
}

// Template exposes the column set for writers.
func (b *SpeedPostBuilder) Template() *Template {
	return b.template
}

// Build produces one manifest row per order.
func (b *SpeedPostBuilder) Build(orders []model.Order) ([]Row, error) {
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

func (b *SpeedPostBuilder) buildRow(order model.Order) Row {
	ship := order.Row.Shipping

	if len(ship.Line1) > 35 || len(ship.Line2) > 35 {
		slog.Warn("Address truncated to fit manifest",
			"order", order.Row.Name)
	}

	weightKG := singleWeightKG
	value := singleValueSGD
	height := singleHeightCM
	if order.Product.Bundle {
		weightKG = bundleWeightKG
		value = bundleValueSGD
		height = bundleHeightCM
	}

	return Row{
		model.Clip(b.sender.Name, 35),
		model.Clip(b.sender.Company, 35),
		model.Clip(b.sender.Address1, 35),
		model.Clip(b.sender.Address2, 35),
		model.Clip(b.sender.Postcode, 10),
		model.Clip(b.sender.Country, 2),
		model.Clip(b.sender.Phone, 20),
		model.Clip(b.sender.Email, 50),
		model.Clip(ship.Name, 35),
		"",
		model.Clip(ship.Line1, 35),
		model.Clip(ship.Line2, 35),
		"",
		model.Clip(ship.City, 30),
		model.Clip(ship.State(), 30),
		strings.ReplaceAll(model.Clip(ship.Zip, 10), "'", ""),
		model.Clip(ship.Country, 2),
		model.Clip(ship.Phone, 20),
		model.Clip(order.Row.Email, 50),
		model.Clip(order.Row.Number(), 20),
		speedpostService,
		"",
		"1",
		weightKG,
		strconv.Itoa(singpostLengthCM),
		strconv.Itoa(singpostWidthCM),
		strconv.Itoa(height),
		singpostCurrency,
		strconv.Itoa(value),
		speedpostCategory,
		"",
		contentDescription(order.Product),
		strconv.Itoa(order.Row.Item.Quantity),
		strconv.Itoa(singleWeightGrams * order.Product.Quantity()),
		strconv.Itoa(value),
		singpostHSTariff,
		singpostOrigin,
		"", "", "", "", "",
	}
}
