// Package report renders the plain-text run summary shown after a convert.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// Result carries the artifact outcomes appended below the region breakdown.
type Result struct {
	SlidesURL     string
	SingPostRows  int
	SpeedPostRows int
}

// Render writes the full summary: per-region order lines, the product
// breakdown with piece counts, grand totals, then one status line per
// artifact. The layout is what the shop pastes into its packing chat, so it
// stays plain text.
func Render(buckets model.Buckets, result Result) string {
	var sb strings.Builder
	sb.WriteString(RenderBreakdown(buckets))

	if result.SingPostRows > 0 {
		fmt.Fprintf(&sb, "\n\nCreated SingPost file with %d international orders (excluding SG, US, CA)", result.SingPostRows)
	} else {
		sb.WriteString("\n\nNo international orders (excluding SG, US, CA) to export to SingPost")
	}
	if result.SpeedPostRows > 0 {
		fmt.Fprintf(&sb, "\n\nCreated SpeedPost file with %d US/Canada orders", result.SpeedPostRows)
	} else {
		sb.WriteString("\n\nNo US/Canada orders to export to SpeedPost")
	}
	if result.SlidesURL != "" {
		fmt.Fprintf(&sb, "\n\nCreated Google Slides presentation: %s", result.SlidesURL)
	}

	return sb.String()
}

// RenderBreakdown writes the region sections and grand totals without the
// artifact status lines, for reporting on stored orders.
func RenderBreakdown(buckets model.Buckets) string {
	var sb strings.Builder

	sb.WriteString("ORDER DETAILS BY REGION:\n")
	for _, region := range model.AllRegions() {
		writeRegionOrders(&sb, region, buckets.ForRegion(region))
	}

	sb.WriteString("\nPRODUCT BREAKDOWN BY REGION:")
	for _, region := range model.AllRegions() {
		writeRegionBreakdown(&sb, region, buckets.ForRegion(region))
	}

	fmt.Fprintf(&sb, "\n\nGRAND TOTAL:")
	fmt.Fprintf(&sb, "\nTotal orders: %d", buckets.Total())
	fmt.Fprintf(&sb, "\nTotal pieces: %d", buckets.TotalPieces())

	return sb.String()
}

func writeRegionOrders(sb *strings.Builder, region model.Region, orders []model.Order) {
	fmt.Fprintf(sb, "\n%s ORDERS:\n", region.DisplayName())
	if len(orders) == 0 {
		sb.WriteString("None\n")
		return
	}
	for _, order := range orders {
		fmt.Fprintf(sb, "%s - %s %s: %d%s %s\n",
			order.Row.Name,
			model.Clip(order.Row.Shipping.Name, 35),
			model.Clip(order.Row.Shipping.Country, 2),
			order.Product.Quantity(),
			order.Product.Size.Short(),
			order.Product.Material)
	}
}

// regionTally groups a bucket's orders by product key for the breakdown.
type regionTally struct {
	orders map[string]int
	pieces map[string]int
}

func tallyRegion(orders []model.Order) regionTally {
	tally := regionTally{
		orders: make(map[string]int),
		pieces: make(map[string]int),
	}
	for _, order := range orders {
		key := order.Product.Key()
		tally.orders[key]++
		tally.pieces[key] += order.Product.Quantity()
	}
	return tally
}

func writeRegionBreakdown(sb *strings.Builder, region model.Region, orders []model.Order) {
	fmt.Fprintf(sb, "\n\n%s:", region.DisplayName())
	if len(orders) == 0 {
		sb.WriteString("\nNone")
		return
	}

	tally := tallyRegion(orders)
	totalPieces := 0
	for _, material := range []model.Material{model.MaterialCotton, model.MaterialTencel, model.MaterialUnknown} {
		totalPieces += writeMaterialGroup(sb, material, tally)
	}

	fmt.Fprintf(sb, "\n\nTotal %s orders: %d", region.DisplayName(), len(orders))
	fmt.Fprintf(sb, "\nTotal %s pieces: %d", region.DisplayName(), totalPieces)
}

// writeMaterialGroup prints one material's products sorted by key and
// returns the piece count for the group.
func writeMaterialGroup(sb *strings.Builder, material model.Material, tally regionTally) int {
	prefix := string(material) + " - "
	var keys []string
	for key := range tally.orders {
		if material == model.MaterialUnknown {
			if !strings.HasPrefix(key, "Cotton - ") && !strings.HasPrefix(key, "Tencel - ") {
				keys = append(keys, key)
			}
		} else if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return 0
	}
	sort.Strings(keys)

	fmt.Fprintf(sb, "\n\n%s Products:", material)
	groupPieces := 0
	for _, key := range keys {
		count := tally.orders[key]
		pieces := tally.pieces[key]
		groupPieces += pieces

		plural := ""
		if count > 1 {
			plural = "s"
		}
		size := key
		if _, after, found := strings.Cut(key, " - "); found {
			size = after
		}
		fmt.Fprintf(sb, "\n%s: %d order%s (%d pieces)", size, count, plural, pieces)
	}
	fmt.Fprintf(sb, "\nTotal %s pieces: %d", material, groupPieces)

	return groupPieces
}
