// Package catalog classifies line-item names into products. There is no
// structured product feed: material, size band and bundle flag are inferred
// by uppercase-substring matching against a fixed vocabulary, extensible via
// a YAML file and stored overrides.
package catalog

import (
	"log/slog"
	"strings"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// materialRule maps an uppercase keyword to a material. First match wins.
type materialRule struct {
	keyword  string
	material model.Material
}

// sizeRule maps the parenthesised range token to a band. The token appears
// with or without the KID/letter prefix, so the range alone discriminates.
type sizeRule struct {
	token string
	band  model.SizeBand
}

// bundleTerms mark two-pair listings.
var bundleTerms = []string{"BUNDLE", "2 PAIRS", "BUNDLE OF 2"}

// Catalog holds the classification vocabulary.
type Catalog struct {
	overrides map[string]model.Product
	materials []materialRule
	sizes     []sizeRule
}

// New returns a catalog with the built-in product vocabulary.
func New() *Catalog {
	return &Catalog{
		overrides: make(map[string]model.Product),
		materials: []materialRule{
			{keyword: "COTTON", material: model.MaterialCotton},
			{keyword: "TENCEL", material: model.MaterialTencel},
		},
		sizes: []sizeRule{
			{token: "(100-110CM)", band: model.SizeKid100},
			{token: "(110-120CM)", band: model.SizeKid110},
			{token: "(120-130CM)", band: model.SizeKid120},
			{token: "(130-140CM)", band: model.SizeKid130},
			{token: "(140-150CM)", band: model.SizeXS},
			{token: "(150-160CM)", band: model.SizeS},
			{token: "(160-170CM)", band: model.SizeM},
			{token: "(170-180CM)", band: model.SizeL},
			{token: "(180-190CM)", band: model.SizeXL},
		},
	}
}

// AddMaterialKeyword appends a keyword rule after the built-in ones.
func (c *Catalog) AddMaterialKeyword(keyword string, material model.Material) {
	keyword = strings.ToUpper(strings.TrimSpace(keyword))
	if keyword == "" {
		return
	}
	c.materials = append(c.materials, materialRule{keyword: keyword, material: material})
}

// AddOverride pins an exact line-item name to a product. Overrides win over
// every keyword rule.
func (c *Catalog) AddOverride(lineItemName string, product model.Product) {
	name := strings.ToUpper(strings.TrimSpace(lineItemName))
	if name == "" {
		return
	}
	c.overrides[name] = product
}

// AddOverrides loads stored overrides, typically from the database.
func (c *Catalog) AddOverrides(overrides []model.ProductOverride) {
	for _, o := range overrides {
		c.AddOverride(o.LineItemName, o.Product)
	}
}

// Classify infers the product for a line-item name. Unmatched material or
// size degrade to Unknown with a warning; classification never fails.
func (c *Catalog) Classify(lineItemName string) model.Product {
	upper := strings.ToUpper(lineItemName)

	if p, ok := c.overrides[strings.TrimSpace(upper)]; ok {
		return p
	}

	p := model.Product{
		Material: model.MaterialUnknown,
		Size:     model.SizeUnknown,
	}

	for _, term := range bundleTerms {
		if strings.Contains(upper, term) {
			p.Bundle = true
			break
		}
	}

	for _, rule := range c.materials {
		if strings.Contains(upper, rule.keyword) {
			p.Material = rule.material
			break
		}
	}
	if p.Material == model.MaterialUnknown {
		slog.Warn("Unknown material in product", "lineitem", lineItemName)
	}

	for _, rule := range c.sizes {
		if strings.Contains(upper, rule.token) {
			p.Size = rule.band
			break
		}
	}
	if p.Size == model.SizeUnknown {
		slog.Warn("Unknown size in product", "lineitem", lineItemName)
	}

	return p
}

// ClassifyRows classifies reconciled rows into orders with region buckets.
func (c *Catalog) ClassifyRows(rows []model.OrderRow) []model.Order {
	orders := make([]model.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, model.Order{
			Row:     row,
			Product: c.Classify(row.Item.Name),
			Region:  model.RegionForCountry(row.Shipping.Country),
		})
	}
	return orders
}
