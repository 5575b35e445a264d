package manifest

import (
	"testing"

	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSender() Sender {
	return Sender{
		Name:     "Eczema Mitten",
		Address1: "71 Ayer Rajah Crescent",
		Postcode: "139951",
		Phone:    "+65 6123 4567",
		Email:    "ship@eczema-mitten.com",
	}
}

func usOrder(name string) model.Order {
	row := model.OrderRow{
		Name:            name,
		ID:              "6001",
		Email:           "amy@example.com",
		FinancialStatus: "paid",
		Item:            model.LineItem{Name: "Eczema Mitten", Quantity: 1, Price: 42.00},
		Shipping: model.Address{
			Name:         "Amy Lee",
			Line1:        "120 Main St",
			City:         "Portland",
			Zip:          "97201",
			Province:     "OR",
			ProvinceName: "Oregon",
			Country:      "US",
			Phone:        "+1 503 555 0100",
		},
	}
	product := model.Product{Material: model.MaterialCotton, Size: model.SizeM}
	return model.Order{Row: row, Product: product, Region: model.RegionUSCanada}
}

func TestSpeedPostTemplate(t *testing.T) {
	template := SpeedPostTemplate()
	require.Len(t, template.Columns, 42)
	assert.True(t, template.Columns[0].Required())
	assert.False(t, template.Columns[37].Required(), "item 2 cells are optional")
}

func TestNewSpeedPostBuilder_ValidatesSender(t *testing.T) {
	_, err := NewSpeedPostBuilder(Sender{Name: "Eczema Mitten"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sender address is required")

	_, err = NewSpeedPostBuilder(testSender())
	require.NoError(t, err)
}

func TestSpeedPostBuild(t *testing.T) {
	builder, err := NewSpeedPostBuilder(testSender())
	require.NoError(t, err)

	rows, err := builder.Build([]model.Order{usOrder("#2001")})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Len(t, row, 42)
	assert.Equal(t, "Eczema Mitten", row[0])
	assert.Equal(t, "SG", row[5], "sender country defaults to SG")
	assert.Equal(t, "Amy Lee", row[8])
	assert.Equal(t, "Portland", row[13])
	assert.Equal(t, "Oregon", row[14])
	assert.Equal(t, "97201", row[15])
	assert.Equal(t, "US", row[16])
	assert.Equal(t, "amy@example.com", row[18])
	assert.Equal(t, "2001", row[19], "order reference drops the # prefix")
	assert.Equal(t, "SPIECO", row[20])
	assert.Equal(t, "1", row[22])
	assert.Equal(t, "0.25", row[23], "single mitten ships at 0.25kg")
	assert.Equal(t, "SGD", row[27])
	assert.Equal(t, "50", row[28])
	assert.Equal(t, "Eczema mitten 1M Cotton", row[31])
	assert.Equal(t, "392620", row[35])
	assert.Equal(t, "SG", row[36])
}

func TestSpeedPostBuild_Bundle(t *testing.T) {
	builder, err := NewSpeedPostBuilder(testSender())
	require.NoError(t, err)

	order := usOrder("#2002")
	order.Product.Bundle = true
	rows, err := builder.Build([]model.Order{order})
	require.NoError(t, err)

	row := rows[0]
	assert.Equal(t, "0.50", row[23])
	assert.Equal(t, "100", row[28])
	assert.Equal(t, "500", row[33], "item weight covers both mittens")
}
