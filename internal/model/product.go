package model

import "strings"

// Material identifies the fabric of a mitten product, inferred from the
// line-item name.
type Material string

// Known materials. Unknown is a valid output: classification degrades rather
// than fails.
const (
	MaterialCotton  Material = "Cotton"
	MaterialTencel  Material = "Tencel"
	MaterialUnknown Material = "Unknown"
)

// SizeBand is one of the fixed size bands printed in product names. Kid bands
// carry no letter prefix; adult bands do.
type SizeBand string

// The nine size bands of the product line.
const (
	SizeKid100 SizeBand = "(100-110cm)"
	SizeKid110 SizeBand = "(110-120cm)"
	SizeKid120 SizeBand = "(120-130cm)"
	SizeKid130 SizeBand = "(130-140cm)"
	SizeXS     SizeBand = "XS (140-150cm)"
	SizeS      SizeBand = "S (150-160cm)"
	SizeM      SizeBand = "M (160-170cm)"
	SizeL      SizeBand = "L (170-180cm)"
	SizeXL     SizeBand = "XL (180-190cm)"

	SizeUnknown SizeBand = "Unknown"
)

// AllSizeBands lists the bands in ascending order, for review flows.
func AllSizeBands() []SizeBand {
	return []SizeBand{
		SizeKid100, SizeKid110, SizeKid120, SizeKid130,
		SizeXS, SizeS, SizeM, SizeL, SizeXL,
	}
}

// Short returns the leading token of the band: the letter for adult bands,
// the full range for kid bands.
func (s SizeBand) Short() string {
	if i := strings.IndexByte(string(s), ' '); i >= 0 {
		return string(s)[:i]
	}
	return string(s)
}

// Compressed returns the form used in customs descriptions: kid bands shrink
// to their lower bound, adult bands to their letter.
func (s SizeBand) Compressed() string {
	switch s {
	case SizeKid100:
		return "(100cm)"
	case SizeKid110:
		return "(110cm)"
	case SizeKid120:
		return "(120cm)"
	case SizeKid130:
		return "(130cm)"
	default:
		return s.Short()
	}
}

// LowerBoundCM returns the band's lower bound as printed on labels, e.g.
// "150cm" for S (150-160cm). Unknown bands return the band text unchanged.
func (s SizeBand) LowerBoundCM() string {
	str := string(s)
	open := strings.IndexByte(str, '(')
	dash := strings.IndexByte(str, '-')
	if open < 0 || dash < 0 || dash < open {
		return str
	}
	return str[open+1:dash] + "cm"
}

// Product is the classification of a line item: material, size band and
// whether the item is a two-pair bundle.
type Product struct {
	Material Material
	Size     SizeBand
	Bundle   bool
}

// Quantity is the number of pieces the line item ships.
func (p Product) Quantity() int {
	if p.Bundle {
		return 2
	}
	return 1
}

// Key is the breakdown-counter key, e.g. "Cotton - S (150-160cm)".
func (p Product) Key() string {
	return string(p.Material) + " - " + string(p.Size)
}

// Recognized reports whether both material and size were classified.
func (p Product) Recognized() bool {
	return p.Material != MaterialUnknown && p.Size != SizeUnknown
}
