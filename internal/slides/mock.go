package slides

import (
	"context"
	"sync"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

// MockRenderer is a mock implementation of LabelRenderer for testing.
type MockRenderer struct {
	RenderFunc      func(ctx context.Context, labels []model.ShippingLabel) (string, error)
	URL             string
	LastLabels      []model.ShippingLabel
	RenderCalls     [][]model.ShippingLabel
	RenderCallCount int
	mu              sync.Mutex
}

// NewMockRenderer creates a mock that returns url for non-empty label lists.
func NewMockRenderer(url string) *MockRenderer {
	return &MockRenderer{URL: url}
}

// Render implements the LabelRenderer interface. Like the real renderer it
// returns no URL for an empty label list.
func (m *MockRenderer) Render(ctx context.Context, labels []model.ShippingLabel) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RenderCallCount++
	m.LastLabels = labels
	m.RenderCalls = append(m.RenderCalls, labels)

	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, labels)
	}
	if len(labels) == 0 {
		return "", nil
	}
	return m.URL, nil
}

// SetRenderError configures the mock to fail every Render call.
func (m *MockRenderer) SetRenderError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RenderFunc = func(context.Context, []model.ShippingLabel) (string, error) {
		return "", err
	}
}

// Reset clears all recorded calls.
func (m *MockRenderer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RenderCallCount = 0
	m.RenderCalls = nil
	m.LastLabels = nil
	m.RenderFunc = nil
}
