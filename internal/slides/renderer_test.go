package slides

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/slides/v1"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

func testLabel() model.ShippingLabel {
	return model.ShippingLabel{
		OrderName: "#1027",
		Name:      "Jo Tan",
		Phone:     "91234567",
		Address1:  "235 Choa Chu Kang Central",
		Address2:  "#07-12",
		Postal:    "689693",
		Product:   model.Product{Material: model.MaterialCotton, Size: model.SizeS},
	}
}

func testRenderer() *Renderer {
	return &Renderer{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
}

func TestBuildSlideRequests_TokenTemplate(t *testing.T) {
	page := &slides.Page{PageElements: []*slides.PageElement{
		textBox("s1", "Name: {{name}}\nContact: {{contact}}", 0),
		textBox("s2", "{{address}} / {{postal}} / {{item}}", 50),
	}}

	requests, strat := testRenderer().buildSlideRequests(page, "slide-1", testLabel())
	assert.Equal(t, strategyToken, strat)
	require.Len(t, requests, 5, "one replacement per field")

	first := requests[0].ReplaceAllText
	require.NotNil(t, first)
	assert.Equal(t, "{{name}}", first.ContainsText.Text)
	assert.False(t, first.ContainsText.MatchCase)
	assert.Equal(t, "Name: #1027 Jo Tan", first.ReplaceText)
	assert.Equal(t, []string{"slide-1"}, first.PageObjectIds)

	last := requests[4].ReplaceAllText
	require.NotNil(t, last)
	assert.Equal(t, "{{item}}", last.ContainsText.Text)
	assert.Equal(t, "Item: 1 150cm Cotton Eczema Mitten", last.ReplaceText)
}

func TestBuildSlideRequests_LegacyDeleteThenInsert(t *testing.T) {
	page := &slides.Page{PageElements: []*slides.PageElement{
		textBox("s-name", "NAME:", 0),
	}}

	requests, strat := testRenderer().buildSlideRequests(page, "slide-1", testLabel())
	assert.Equal(t, strategyPrefix, strat)
	require.Len(t, requests, 2)

	require.NotNil(t, requests[0].DeleteText)
	assert.Equal(t, "s-name", requests[0].DeleteText.ObjectId)
	assert.Equal(t, "ALL", requests[0].DeleteText.TextRange.Type)

	require.NotNil(t, requests[1].InsertText)
	assert.Equal(t, "Name: #1027 Jo Tan", requests[1].InsertText.Text)
}

func TestBuildSlideRequests_EmptyTableCellSkipsDelete(t *testing.T) {
	page := &slides.Page{PageElements: []*slides.PageElement{
		tableElement("t1", []string{"", "", "", "", ""}),
	}}

	requests, strat := testRenderer().buildSlideRequests(page, "slide-1", testLabel())
	assert.Equal(t, strategyTable, strat)
	require.Len(t, requests, 5, "empty cells need no delete")
	for _, req := range requests {
		require.NotNil(t, req.InsertText)
		require.NotNil(t, req.InsertText.CellLocation)
	}
}

func TestBuildSlideRequests_BareSlideCreatesTextBoxes(t *testing.T) {
	requests, strat := testRenderer().buildSlideRequests(&slides.Page{}, "slide-1", testLabel())
	assert.Equal(t, strategyCreate, strat)
	require.Len(t, requests, 10, "create plus insert per field")

	require.NotNil(t, requests[0].CreateShape)
	assert.Equal(t, "TEXT_BOX", requests[0].CreateShape.ShapeType)
	assert.Equal(t, "slide-1", requests[0].CreateShape.ElementProperties.PageObjectId)
	require.NotNil(t, requests[1].InsertText)
	assert.Equal(t, requests[0].CreateShape.ObjectId, requests[1].InsertText.ObjectId)

	// Boxes stack downward in field order.
	firstY := requests[0].CreateShape.ElementProperties.Transform.TranslateY
	lastY := requests[8].CreateShape.ElementProperties.Transform.TranslateY
	assert.Less(t, firstY, lastY)
}

func TestPresentationURL(t *testing.T) {
	assert.Equal(t,
		"https://docs.google.com/presentation/d/abc123/edit",
		presentationURL("abc123"))
}

func TestMockRenderer(t *testing.T) {
	mock := NewMockRenderer("https://docs.google.com/presentation/d/mock/edit")

	url, err := mock.Render(context.Background(), []model.ShippingLabel{testLabel()})
	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/presentation/d/mock/edit", url)
	assert.Equal(t, 1, mock.RenderCallCount)

	url, err = mock.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, url, "no URL for an empty label list")

	mock.SetRenderError(errors.New("quota exhausted"))
	_, err = mock.Render(context.Background(), []model.ShippingLabel{testLabel()})
	require.Error(t, err)
}
