// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// OrderRow is one line of a Shopify order export: a single line item together
// with the order-level fields Shopify repeats on every line. Rows sharing an
// order number are amendments of the same order.
type OrderRow struct {
	Name            string // raw order name, e.g. "#1027"
	ID              string // numeric Shopify order ID
	Email           string
	FinancialStatus string
	PaidAt          string
	Item            LineItem
	Shipping        Address
	Hash            string
}

// LineItem is the product portion of an order row.
type LineItem struct {
	Name     string
	Quantity int
	Price    float64
}

// Address holds the shipping address fields of the export.
type Address struct {
	Name         string
	Line1        string
	Line2        string
	City         string
	Zip          string
	Province     string
	ProvinceName string
	Country      string
	Phone        string
}

// State prefers the spelled-out province name over the code.
func (a Address) State() string {
	if strings.TrimSpace(a.ProvinceName) != "" {
		return a.ProvinceName
	}
	return a.Province
}

// Number returns the order number with the # marker stripped.
func (r *OrderRow) Number() string {
	return strings.ReplaceAll(r.Name, "#", "")
}

// GenerateHash creates a unique hash for duplicate detection across imports.
func (r *OrderRow) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%d:%.2f:%s",
		r.Number(),
		r.Item.Name,
		r.Item.Quantity,
		r.Item.Price,
		r.Shipping.Country)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Clip truncates s to at most n bytes. Carrier templates cap every field
// length, so overlong values are cut rather than rejected.
func Clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Order is a reconciled order row joined with its classification, ready for
// manifest mapping and label rendering.
type Order struct {
	Row     OrderRow
	Product Product
	Region  Region
}

// Label projects the order onto the fields printed on a shipping label,
// applying the label template's length caps.
func (o *Order) Label() ShippingLabel {
	return ShippingLabel{
		OrderName: o.Row.Name,
		Name:      Clip(o.Row.Shipping.Name, 35),
		Phone:     Clip(o.Row.Shipping.Phone, 20),
		Address1:  Clip(o.Row.Shipping.Line1, 50),
		Address2:  Clip(o.Row.Shipping.Line2, 50),
		City:      Clip(o.Row.Shipping.City, 30),
		Postal:    Clip(o.Row.Shipping.Zip, 10),
		Product:   o.Product,
	}
}
