package model

import "strings"

// ShippingLabel carries the fields rendered onto one Singapore shipping
// label slide.
type ShippingLabel struct {
	OrderName string // raw order name with the # marker, e.g. "#1027"
	Name      string
	Phone     string
	Address1  string
	Address2  string
	City      string
	Postal    string
	Product   Product
}

// LabelField identifies one of the five semantic fields on a label.
type LabelField string

// The label fields, in top-to-bottom template order.
const (
	FieldName    LabelField = "name"
	FieldContact LabelField = "contact"
	FieldAddress LabelField = "address"
	FieldPostal  LabelField = "postal"
	FieldItem    LabelField = "item"
)

// AllLabelFields lists the fields in template order.
func AllLabelFields() []LabelField {
	return []LabelField{FieldName, FieldContact, FieldAddress, FieldPostal, FieldItem}
}

// FieldText returns the rendered text for a label field.
func (l ShippingLabel) FieldText(f LabelField) string {
	switch f {
	case FieldName:
		return "Name: #" + strings.ReplaceAll(l.OrderName, "#", "") + " " + l.Name
	case FieldContact:
		return "Contact: " + l.Phone
	case FieldAddress:
		return "Delivery Address: " + l.CombinedAddress()
	case FieldPostal:
		return "Postal: " + l.Postal
	case FieldItem:
		qty := "1"
		if l.Product.Bundle {
			qty = "2"
		}
		return "Item: " + qty + " " + l.Product.Size.LowerBoundCM() + " " +
			string(l.Product.Material) + " Eczema Mitten"
	default:
		return ""
	}
}

// CombinedAddress joins the address lines, skipping a blank second line.
func (l ShippingLabel) CombinedAddress() string {
	if strings.TrimSpace(l.Address2) == "" {
		return l.Address1
	}
	return l.Address1 + "\n" + l.Address2
}
