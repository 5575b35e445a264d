package slides

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/slides/v1"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

func textBox(objectID, text string, y float64) *slides.PageElement {
	return &slides.PageElement{
		ObjectId: objectID,
		Shape: &slides.Shape{
			Text: &slides.TextContent{
				TextElements: []*slides.TextElement{
					{TextRun: &slides.TextRun{Content: text}},
				},
			},
		},
		Transform: &slides.AffineTransform{TranslateY: y},
	}
}

func tableElement(objectID string, cellTexts []string) *slides.PageElement {
	rows := make([]*slides.TableRow, len(cellTexts))
	for i, text := range cellTexts {
		rows[i] = &slides.TableRow{
			TableCells: []*slides.TableCell{
				{
					Text: &slides.TextContent{
						TextElements: []*slides.TextElement{
							{TextRun: &slides.TextRun{Content: text}},
						},
					},
				},
			},
		}
	}
	return &slides.PageElement{
		ObjectId: objectID,
		Table:    &slides.Table{TableRows: rows},
	}
}

func TestHasPlaceholderTokens(t *testing.T) {
	withTokens := &slides.Page{PageElements: []*slides.PageElement{
		textBox("s1", "Name: {{name}}", 0),
	}}
	assert.True(t, hasPlaceholderTokens(withTokens))

	upperToken := &slides.Page{PageElements: []*slides.PageElement{
		textBox("s1", "{{NAME}}", 0),
	}}
	assert.True(t, hasPlaceholderTokens(upperToken), "token match ignores case")

	tableToken := &slides.Page{PageElements: []*slides.PageElement{
		tableElement("t1", []string{"{{address}}"}),
	}}
	assert.True(t, hasPlaceholderTokens(tableToken))

	legacy := &slides.Page{PageElements: []*slides.PageElement{
		textBox("s1", "NAME:", 0),
	}}
	assert.False(t, hasPlaceholderTokens(legacy))
}

func TestLocateLegacyTargets_LabelPrefixes(t *testing.T) {
	page := &slides.Page{PageElements: []*slides.PageElement{
		textBox("s-name", "Name: ", 10),
		textBox("s-contact", "contact: 9123", 20),
		textBox("s-addr", "Delivery Address:", 30),
		textBox("s-postal", "POSTAL:", 40),
		textBox("s-item", "Item: old", 50),
		textBox("s-deco", "Thank you for your order!", 60),
	}}

	targets, strat := locateLegacyTargets(page)
	assert.Equal(t, strategyPrefix, strat)
	require.Len(t, targets, 5)
	assert.Equal(t, "s-name", targets[model.FieldName][0].objectID)
	assert.Equal(t, "s-contact", targets[model.FieldContact][0].objectID)
	assert.Equal(t, "s-addr", targets[model.FieldAddress][0].objectID)
	assert.Equal(t, "s-postal", targets[model.FieldPostal][0].objectID)
	assert.Equal(t, "s-item", targets[model.FieldItem][0].objectID)
	assert.True(t, targets[model.FieldName][0].hasText)
	assert.Nil(t, targets[model.FieldName][0].cell)
}

func TestLocateLegacyTargets_Table(t *testing.T) {
	page := &slides.Page{PageElements: []*slides.PageElement{
		tableElement("t1", []string{"row0", "row1", "", "row3", "row4"}),
	}}

	targets, strat := locateLegacyTargets(page)
	assert.Equal(t, strategyTable, strat)
	require.Len(t, targets, 5)

	name := targets[model.FieldName][0]
	assert.Equal(t, "t1", name.objectID)
	require.NotNil(t, name.cell)
	assert.Equal(t, int64(0), name.cell.RowIndex)
	assert.True(t, name.hasText)

	// The empty third row maps to the address field with no delete needed.
	address := targets[model.FieldAddress][0]
	assert.Equal(t, int64(2), address.cell.RowIndex)
	assert.False(t, address.hasText)
}

func TestLocateLegacyTargets_Positional(t *testing.T) {
	// No labels and no table: shapes sorted by vertical position take the
	// fields top to bottom.
	page := &slides.Page{PageElements: []*slides.PageElement{
		textBox("s-third", "c", 120),
		textBox("s-first", "a", 10),
		textBox("s-second", "b", 60),
	}}

	targets, strat := locateLegacyTargets(page)
	assert.Equal(t, strategyPositional, strat)
	require.Len(t, targets, 3, "only as many fields as shapes")
	assert.Equal(t, "s-first", targets[model.FieldName][0].objectID)
	assert.Equal(t, "s-second", targets[model.FieldContact][0].objectID)
	assert.Equal(t, "s-third", targets[model.FieldAddress][0].objectID)
}

func TestLocateLegacyTargets_EmptySlide(t *testing.T) {
	targets, strat := locateLegacyTargets(&slides.Page{})
	assert.Empty(t, targets)
	assert.Equal(t, strategyCreate, strat)
}

func TestLocateLegacyTargets_PrefixBeatsTable(t *testing.T) {
	page := &slides.Page{PageElements: []*slides.PageElement{
		textBox("s-name", "NAME: placeholder", 10),
		tableElement("t1", []string{"a", "b", "c", "d", "e"}),
	}}

	targets, strat := locateLegacyTargets(page)
	assert.Equal(t, strategyPrefix, strat)
	require.Len(t, targets, 1)
	assert.Equal(t, "s-name", targets[model.FieldName][0].objectID)
}
