package model

// Region buckets orders by shipping country. Each bucket routes to a
// different manifest template and label surface.
type Region string

// The three routing buckets.
const (
	RegionSingapore     Region = "SG"
	RegionUSCanada      Region = "US/CA"
	RegionInternational Region = "INTL"
)

// RegionForCountry maps an ISO country code to its routing bucket. Matching
// is exact: anything that is not SG, US or CA ships via the international
// manifest.
func RegionForCountry(code string) Region {
	switch code {
	case "SG":
		return RegionSingapore
	case "US", "CA":
		return RegionUSCanada
	default:
		return RegionInternational
	}
}

// DisplayName returns the name used in summary headings.
func (r Region) DisplayName() string {
	switch r {
	case RegionSingapore:
		return "SINGAPORE"
	case RegionUSCanada:
		return "US/CANADA"
	default:
		return "INTERNATIONAL"
	}
}

// AllRegions lists the buckets in summary order.
func AllRegions() []Region {
	return []Region{RegionSingapore, RegionUSCanada, RegionInternational}
}

// Buckets holds classified orders grouped by shipping region.
type Buckets struct {
	Singapore     []Order
	USCanada      []Order
	International []Order
}

// BucketByRegion splits orders into their routing buckets, preserving order
// within each bucket.
func BucketByRegion(orders []Order) Buckets {
	var b Buckets
	for _, order := range orders {
		switch order.Region {
		case RegionSingapore:
			b.Singapore = append(b.Singapore, order)
		case RegionUSCanada:
			b.USCanada = append(b.USCanada, order)
		default:
			b.International = append(b.International, order)
		}
	}
	return b
}

// ForRegion returns one bucket's orders.
func (b Buckets) ForRegion(r Region) []Order {
	switch r {
	case RegionSingapore:
		return b.Singapore
	case RegionUSCanada:
		return b.USCanada
	default:
		return b.International
	}
}

// Total counts orders across all buckets.
func (b Buckets) Total() int {
	return len(b.Singapore) + len(b.USCanada) + len(b.International)
}

// TotalPieces counts mittens across all buckets, two per bundle.
func (b Buckets) TotalPieces() int {
	pieces := 0
	for _, r := range AllRegions() {
		for _, order := range b.ForRegion(r) {
			pieces += order.Product.Quantity()
		}
	}
	return pieces
}
