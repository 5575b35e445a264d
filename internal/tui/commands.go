package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/service"
)

// saveOverride persists a reviewed classification for one line-item name.
func saveOverride(storage service.Storage, item string, product model.Product) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := storage.SaveProductOverride(ctx, &model.ProductOverride{
			LineItemName: item,
			Product:      product,
		})
		return overrideSavedMsg{item: item, err: err}
	}
}
