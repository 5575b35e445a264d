package shopify

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// AmendPolicy selects how repeated rows for the same order number collapse.
type AmendPolicy string

const (
	// AmendKeepLast keeps only the newest row for an amended order. This is
	// the default: Shopify appends a full replacement row when staff edit an
	// order, so the last row is the order as it should ship.
	AmendKeepLast AmendPolicy = "keep-last"
	// AmendMerge keeps the first row's identity and payment fields but takes
	// the line item from the newest row.
	AmendMerge AmendPolicy = "merge"
)

// ParseAmendPolicy validates a policy name from config or flags.
func ParseAmendPolicy(s string) (AmendPolicy, error) {
	switch AmendPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case AmendKeepLast, "":
		return AmendKeepLast, nil
	case AmendMerge:
		return AmendMerge, nil
	default:
		return "", fmt.Errorf("invalid amend policy %q (want keep-last or merge)", s)
	}
}

// ReconcileStats summarizes what Reconcile did to the input rows.
type ReconcileStats struct {
	Input   int
	Unpaid  int
	Amended int
	Output  int
}

// Reconcile drops rows without a financial status and collapses amendment
// rows so each order number appears exactly once. Rows with an empty
// Financial Status are abandoned checkouts or partial export lines and never
// ship. Output order follows the kept representative's position in the input.
func Reconcile(rows []model.OrderRow, policy AmendPolicy) ([]model.OrderRow, ReconcileStats) {
	stats := ReconcileStats{Input: len(rows)}

	paid := make([]model.OrderRow, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.FinancialStatus) == "" {
			stats.Unpaid++
			continue
		}
		paid = append(paid, row)
	}

	counts := make(map[string]int)
	lastIndex := make(map[string]int)
	lastRow := make(map[string]model.OrderRow)
	for i, row := range paid {
		number := row.Number()
		counts[number]++
		lastIndex[number] = i
		lastRow[number] = row
	}
	for _, c := range counts {
		if c > 1 {
			stats.Amended++
		}
	}

	out := make([]model.OrderRow, 0, len(counts))
	switch policy {
	case AmendMerge:
		seen := make(map[string]bool, len(counts))
		for _, row := range paid {
			number := row.Number()
			if seen[number] {
				continue
			}
			seen[number] = true
			if counts[number] > 1 {
				merged := row
				merged.Item = lastRow[number].Item
				merged.Hash = merged.GenerateHash()
				slog.Info("Merged amended order",
					"order", number,
					"rows", counts[number],
					"item", merged.Item.Name)
				out = append(out, merged)
				continue
			}
			out = append(out, row)
		}
	default:
		for i, row := range paid {
			number := row.Number()
			if lastIndex[number] != i {
				continue
			}
			if counts[number] > 1 {
				slog.Info("Kept newest row for amended order",
					"order", number,
					"rows", counts[number])
			}
			out = append(out, row)
		}
	}

	stats.Output = len(out)
	slog.Info("Reconciled order rows",
		"input", stats.Input,
		"unpaid", stats.Unpaid,
		"amended", stats.Amended,
		"output", stats.Output)

	return out, stats
}
