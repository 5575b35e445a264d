package manifest

import (
	"strings"
	"testing"

	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intlOrder(name string, product model.Product) model.Order {
	row := model.OrderRow{
		Name:            name,
		ID:              "5001",
		FinancialStatus: "paid",
		Item:            model.LineItem{Name: "Eczema Mitten", Quantity: 1, Price: 29.90},
		Shipping: model.Address{
			Name:    "Hana Suzuki",
			Line1:   "2-11-3 Meguro",
			Line2:   "Apt 501",
			City:    "Tokyo",
			Zip:     "153-0063",
			Country: "JP",
			Phone:   "+81 90 1234 5678",
		},
	}
	return model.Order{Row: row, Product: product, Region: model.RegionInternational}
}

func TestSingPostTemplate(t *testing.T) {
	template := SingPostTemplate()
	require.Len(t, template.Columns, 39)

	assert.Equal(t, "Send to business name line 1 (Max 35 characters) - *", template.Columns[0].Name)
	// The carrier sheet has a doubled space in this header.
	assert.Equal(t, "Send to address line 2  (Max 35 characters) - *", template.Columns[3].Name)
	assert.Equal(t, "Item content 3 Country of origin (Max 2 characters) - *", template.Columns[38].Name)

	assert.True(t, template.Columns[0].Required())
	assert.False(t, template.Columns[1].Required(), "business name line 2 is optional")
	// Currency ends in "-*" without a space and is not flagged required.
	assert.Equal(t, "Currency type - for all item values (3 characters) -*", template.Columns[20].Name)
	assert.False(t, template.Columns[20].Required())
}

func TestSingPostBuild(t *testing.T) {
	builder := NewSingPostBuilder()
	product := model.Product{Material: model.MaterialCotton, Size: model.SizeS}

	rows, err := builder.Build([]model.Order{intlOrder("#1001", product)})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Len(t, row, 39)
	assert.Equal(t, "Hana Suzuki", row[0])
	assert.Equal(t, "2-11-3 Meguro", row[2])
	assert.Equal(t, "Apt 501", row[3])
	assert.Equal(t, "Tokyo", row[5])
	assert.Equal(t, "JP", row[7])
	assert.Equal(t, "153-0063", row[8])
	assert.Equal(t, "5001", row[10])
	assert.Equal(t, "AS", row[11])
	assert.Equal(t, "NS", row[12])
	assert.Equal(t, "M", row[13])
	assert.Equal(t, "250", row[15], "single mitten weighs 250g")
	assert.Equal(t, "20", row[16])
	assert.Equal(t, "10", row[17])
	assert.Equal(t, "2", row[18], "single mitten packs 2cm high")
	assert.Equal(t, "IRAIRA", row[19])
	assert.Equal(t, "SGD", row[20])
	assert.Equal(t, "Eczema mitten 1S Cotton", row[21])
	assert.Equal(t, "1", row[22])
	assert.Equal(t, "250", row[23])
	assert.Equal(t, "50", row[24], "single mitten declares SGD 50")
	assert.Equal(t, "392620", row[25])
	assert.Equal(t, "SG", row[26])

	for i := 27; i < 39; i++ {
		assert.Empty(t, row[i], "content 2 and 3 cells stay blank")
	}
}

func TestSingPostBuild_Bundle(t *testing.T) {
	builder := NewSingPostBuilder()
	product := model.Product{Material: model.MaterialTencel, Size: model.SizeKid100, Bundle: true}
	order := intlOrder("#1002", product)
	order.Row.Item.Quantity = 2

	rows, err := builder.Build([]model.Order{order})
	require.NoError(t, err)

	row := rows[0]
	assert.Equal(t, "500", row[15], "bundle weighs 500g")
	assert.Equal(t, "4", row[18], "bundle packs 4cm high")
	assert.Equal(t, "Eczema mitten 2(100cm) Tencel", row[21])
	assert.Equal(t, "2", row[22])
	assert.Equal(t, "100", row[24], "bundle declares SGD 100")
}

func TestSingPostBuild_EmptyAddressLine2(t *testing.T) {
	builder := NewSingPostBuilder()
	order := intlOrder("#1003", model.Product{Material: model.MaterialCotton, Size: model.SizeM})
	order.Row.Shipping.Line2 = "  "

	rows, err := builder.Build([]model.Order{order})
	require.NoError(t, err)
	assert.Equal(t, "NA", rows[0][3], "blank address line 2 ships as NA")
}

func TestSingPostBuild_PostcodeApostropheStripped(t *testing.T) {
	builder := NewSingPostBuilder()
	order := intlOrder("#1004", model.Product{Material: model.MaterialCotton, Size: model.SizeM})
	order.Row.Shipping.Zip = "'045678"

	rows, err := builder.Build([]model.Order{order})
	require.NoError(t, err)
	assert.Equal(t, "045678", rows[0][8])
}

func TestSingPostBuild_StatePrefersFullName(t *testing.T) {
	builder := NewSingPostBuilder()
	order := intlOrder("#1005", model.Product{Material: model.MaterialCotton, Size: model.SizeL})
	order.Row.Shipping.Province = "13"
	order.Row.Shipping.ProvinceName = "Tokyo Prefecture"

	rows, err := builder.Build([]model.Order{order})
	require.NoError(t, err)
	assert.Equal(t, "Tokyo Prefecture", rows[0][6])
}

func TestSingPostBuild_LongFieldsClipped(t *testing.T) {
	builder := NewSingPostBuilder()
	order := intlOrder("#1006", model.Product{Material: model.MaterialCotton, Size: model.SizeXL})
	order.Row.Shipping.Name = strings.Repeat("N", 50)
	order.Row.Shipping.Line1 = strings.Repeat("A", 40)

	rows, err := builder.Build([]model.Order{order})
	require.NoError(t, err)
	assert.Len(t, rows[0][0], 35)
	assert.Len(t, rows[0][2], 35)
}
