package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		lineitem string
		want     model.Product
	}{
		{
			name:     "cotton adult small",
			lineitem: "Eczema Mitten - Cotton - S (150-160cm)",
			want:     model.Product{Material: model.MaterialCotton, Size: model.SizeS},
		},
		{
			name:     "tencel kid band",
			lineitem: "Eczema Mitten - Tencel - Kid (100-110cm)",
			want:     model.Product{Material: model.MaterialTencel, Size: model.SizeKid100},
		},
		{
			name:     "bare range without prefix",
			lineitem: "Tencel mitten (130-140cm)",
			want:     model.Product{Material: model.MaterialTencel, Size: model.SizeKid130},
		},
		{
			name:     "bundle keyword",
			lineitem: "Bundle of 2 - Cotton - M (160-170cm)",
			want:     model.Product{Material: model.MaterialCotton, Size: model.SizeM, Bundle: true},
		},
		{
			name:     "two pairs keyword",
			lineitem: "Cotton mittens 2 pairs XS (140-150cm)",
			want:     model.Product{Material: model.MaterialCotton, Size: model.SizeXS, Bundle: true},
		},
		{
			name:     "mixed case input",
			lineitem: "eczema mitten - cotton - xl (180-190CM)",
			want:     model.Product{Material: model.MaterialCotton, Size: model.SizeXL},
		},
		{
			name:     "unknown material keeps size",
			lineitem: "Mystery wrap S (150-160cm)",
			want:     model.Product{Material: model.MaterialUnknown, Size: model.SizeS},
		},
		{
			name:     "unknown size keeps material",
			lineitem: "Cotton gift card",
			want:     model.Product{Material: model.MaterialCotton, Size: model.SizeUnknown},
		},
		{
			name:     "nothing recognized",
			lineitem: "Tote bag",
			want:     model.Product{Material: model.MaterialUnknown, Size: model.SizeUnknown},
		},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.lineitem)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_OverrideWinsOverKeywords(t *testing.T) {
	c := New()
	c.AddOverride("Cotton gift card", model.Product{
		Material: model.MaterialCotton,
		Size:     model.SizeS,
	})

	got := c.Classify("Cotton gift card")
	assert.Equal(t, model.SizeS, got.Size)

	// Case differences must not defeat the override.
	got = c.Classify("COTTON GIFT CARD")
	assert.Equal(t, model.SizeS, got.Size)
}

func TestClassify_ExtendedMaterialKeyword(t *testing.T) {
	c := New()
	c.AddMaterialKeyword("bamboo", model.Material("Bamboo"))

	got := c.Classify("Bamboo mitten M (160-170cm)")
	assert.Equal(t, model.Material("Bamboo"), got.Material)
	assert.Equal(t, model.SizeM, got.Size)

	// Built-in keywords still match first.
	got = c.Classify("Cotton bamboo blend M (160-170cm)")
	assert.Equal(t, model.MaterialCotton, got.Material)
}

func TestClassifyRows_RegionBuckets(t *testing.T) {
	rows := []model.OrderRow{
		{Name: "#1", Item: model.LineItem{Name: "Cotton S (150-160cm)"}, Shipping: model.Address{Country: "SG"}},
		{Name: "#2", Item: model.LineItem{Name: "Cotton S (150-160cm)"}, Shipping: model.Address{Country: "US"}},
		{Name: "#3", Item: model.LineItem{Name: "Cotton S (150-160cm)"}, Shipping: model.Address{Country: "CA"}},
		{Name: "#4", Item: model.LineItem{Name: "Cotton S (150-160cm)"}, Shipping: model.Address{Country: "DE"}},
	}

	orders := New().ClassifyRows(rows)

	assert.Len(t, orders, 4)
	assert.Equal(t, model.RegionSingapore, orders[0].Region)
	assert.Equal(t, model.RegionUSCanada, orders[1].Region)
	assert.Equal(t, model.RegionUSCanada, orders[2].Region)
	assert.Equal(t, model.RegionInternational, orders[3].Region)
}

func TestProductQuantityAndKey(t *testing.T) {
	single := model.Product{Material: model.MaterialCotton, Size: model.SizeS}
	bundle := model.Product{Material: model.MaterialTencel, Size: model.SizeKid110, Bundle: true}

	assert.Equal(t, 1, single.Quantity())
	assert.Equal(t, 2, bundle.Quantity())
	assert.Equal(t, "Cotton - S (150-160cm)", single.Key())
	assert.Equal(t, "Tencel - (110-120cm)", bundle.Key())
}
