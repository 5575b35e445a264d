package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eczema-mitten/mittenpost/internal/cli"
	"github.com/eczema-mitten/mittenpost/internal/service"
)

// Run starts the interactive review flow for unrecognized line items.
// When nothing needs review it prints a confirmation and returns without
// entering the alternate screen.
func Run(ctx context.Context, storage service.Storage) error {
	if storage == nil {
		return fmt.Errorf("storage is required")
	}

	items, err := storage.GetUnrecognizedItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load unrecognized items: %w", err)
	}
	if len(items) == 0 {
		fmt.Println(cli.FormatSuccess("Nothing to review: every imported line item is recognized."))
		return nil
	}

	program := tea.NewProgram(newModel(storage, items), tea.WithContext(ctx), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("review UI failed: %w", err)
	}

	if m, ok := final.(Model); ok && m.saved > 0 {
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved %d override(s). They apply on the next convert run.", m.saved)))
	}
	return nil
}
