package slides

import (
	"sort"
	"strings"

	"google.golang.org/api/slides/v1"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// fieldTarget addresses one element (or table cell) holding a label field.
type fieldTarget struct {
	cell     *slides.TableCellLocation // set for table cells
	objectID string
	hasText  bool // existing text must be deleted before inserting
}

// strategy names which locator matched, for logging.
type strategy string

const (
	strategyToken      strategy = "token"
	strategyPrefix     strategy = "label-prefix"
	strategyTable      strategy = "table"
	strategyPositional strategy = "positional"
	strategyCreate     strategy = "create"
)

// placeholderToken returns the {{field}} marker templates use to mark where
// a value lands, e.g. {{name}} or {{address}}.
func placeholderToken(f model.LabelField) string {
	return "{{" + string(f) + "}}"
}

// labelPrefixes maps the legacy template's printed labels to fields. Older
// label decks have no tokens, only headings like "NAME:" baked into shapes.
var labelPrefixes = []struct {
	prefix string
	field  model.LabelField
}{
	{"NAME:", model.FieldName},
	{"CONTACT:", model.FieldContact},
	{"DELIVERY ADDRESS:", model.FieldAddress},
	{"POSTAL:", model.FieldPostal},
	{"ITEM:", model.FieldItem},
}

// textShape is a page shape that carries text, with its vertical position.
type textShape struct {
	objectID string
	text     string
	y        float64
}

func textContent(tc *slides.TextContent) string {
	if tc == nil {
		return ""
	}
	var sb strings.Builder
	for _, te := range tc.TextElements {
		if te.TextRun != nil {
			sb.WriteString(te.TextRun.Content)
		}
	}
	return strings.TrimSpace(sb.String())
}

func collectTextShapes(page *slides.Page) []textShape {
	var shapes []textShape
	for _, element := range page.PageElements {
		if element.Shape == nil || element.Shape.Text == nil {
			continue
		}
		shape := textShape{
			objectID: element.ObjectId,
			text:     textContent(element.Shape.Text),
		}
		if element.Transform != nil {
			shape.y = element.Transform.TranslateY
		}
		shapes = append(shapes, shape)
	}
	return shapes
}

func firstTable(page *slides.Page) *slides.PageElement {
	for _, element := range page.PageElements {
		if element.Table != nil {
			return element
		}
	}
	return nil
}

// hasPlaceholderTokens reports whether the page carries {{field}} markers in
// any shape or table cell. Token templates get native text replacement; only
// token-less decks fall back to the heuristics.
func hasPlaceholderTokens(page *slides.Page) bool {
	tokens := make([]string, 0, len(model.AllLabelFields()))
	for _, field := range model.AllLabelFields() {
		tokens = append(tokens, placeholderToken(field))
	}

	contains := func(text string) bool {
		lower := strings.ToLower(text)
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				return true
			}
		}
		return false
	}

	for _, shape := range collectTextShapes(page) {
		if contains(shape.text) {
			return true
		}
	}
	if table := firstTable(page); table != nil {
		for _, row := range table.Table.TableRows {
			for _, cell := range row.TableCells {
				if contains(textContent(cell.Text)) {
					return true
				}
			}
		}
	}
	return false
}

// locateLegacyTargets finds the element for each field on a token-less
// slide. It tries the heuristics in order of reliability: printed label
// prefixes, then the first table's rows, then shapes sorted top to bottom.
// An empty map means the slide has nothing to write into and the caller
// must create text boxes.
func locateLegacyTargets(page *slides.Page) (map[model.LabelField][]fieldTarget, strategy) {
	shapes := collectTextShapes(page)

	// Printed labels, e.g. a shape reading "NAME:". Substring match, first
	// pattern wins per shape, and several shapes may carry the same label.
	targets := make(map[model.LabelField][]fieldTarget)
	for _, shape := range shapes {
		upper := strings.ToUpper(shape.text)
		for _, lp := range labelPrefixes {
			if strings.Contains(upper, lp.prefix) {
				targets[lp.field] = append(targets[lp.field], fieldTarget{
					objectID: shape.objectID,
					hasText:  true,
				})
				break
			}
		}
	}
	if len(targets) > 0 {
		return targets, strategyPrefix
	}

	// One table row per field, top to bottom, first column.
	if table := firstTable(page); table != nil {
		for i, field := range model.AllLabelFields() {
			if i >= len(table.Table.TableRows) {
				break
			}
			row := table.Table.TableRows[i]
			if len(row.TableCells) == 0 {
				continue
			}
			targets[field] = append(targets[field], fieldTarget{
				objectID: table.ObjectId,
				cell: &slides.TableCellLocation{
					RowIndex:    int64(i),
					ColumnIndex: 0,
				},
				hasText: textContent(row.TableCells[0].Text) != "",
			})
		}
		if len(targets) > 0 {
			return targets, strategyTable
		}
	}

	// Last resort: shapes in vertical order take the fields in label order.
	if len(shapes) > 0 {
		sorted := make([]textShape, len(shapes))
		copy(sorted, shapes)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].y < sorted[j].y
		})
		for i, field := range model.AllLabelFields() {
			if i >= len(sorted) {
				break
			}
			targets[field] = append(targets[field], fieldTarget{
				objectID: sorted[i].objectID,
				hasText:  sorted[i].text != "",
			})
		}
		return targets, strategyPositional
	}

	return targets, strategyCreate
}
