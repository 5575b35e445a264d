// Package manifest builds carrier upload files from classified orders.
package manifest

import (
	"fmt"
	"strings"

	"github.com/eczema-mitten/mittenpost/internal/common"
)

// Column is one header cell of a carrier upload template. The carrier's own
// sheet marks mandatory columns with a "- *" suffix on the header text.
type Column struct {
	Name string
}

// Required reports whether the carrier marks this column mandatory. The check
// is a strict "- *" suffix match: the SingPost currency header ends in "-*"
// with no space and does not count, same as in the carrier's template.
func (c Column) Required() bool {
	return strings.HasSuffix(c.Name, "- *")
}

// Row is one manifest line, cells in template column order.
type Row []string

// Template describes a carrier upload sheet with a fixed column set.
type Template struct {
	Name    string
	Columns []Column
}

// Headers returns the header cells in column order.
func (t *Template) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = col.Name
	}
	return headers
}

// ValidateRow rejects rows whose cell count does not match the template.
// A misaligned row would shift every later value into the wrong column on
// upload, so this is a hard failure rather than a warning.
func (t *Template) ValidateRow(row Row) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("%w: row has %d cells, %s template has %d columns",
			common.ErrColumnCount, len(row), t.Name, len(t.Columns))
	}
	return nil
}

// MissingRequired returns the names of required columns left empty in row.
func (t *Template) MissingRequired(row Row) []string {
	var missing []string
	for i, col := range t.Columns {
		if !col.Required() {
			continue
		}
		if i >= len(row) || strings.TrimSpace(row[i]) == "" {
			missing = append(missing, col.Name)
		}
	}
	return missing
}

// RequiredGaps counts empty cells per required column across all rows,
// mirroring the carrier portal's pre-upload validation report. Columns empty
// in every row are unused content slots, not data gaps, and are skipped.
func (t *Template) RequiredGaps(rows []Row) map[string]int {
	used := make([]bool, len(t.Columns))
	for _, row := range rows {
		for i := range t.Columns {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				used[i] = true
			}
		}
	}

	gaps := make(map[string]int)
	for _, row := range rows {
		for i, col := range t.Columns {
			if !col.Required() || !used[i] {
				continue
			}
			if i >= len(row) || strings.TrimSpace(row[i]) == "" {
				gaps[col.Name]++
			}
		}
	}
	return gaps
}
