// Package tui implements the interactive review flow for line items the
// classifier could not recognize.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/service"
)

// state represents the current step of the review flow.
type state int

const (
	stateList state = iota
	stateMaterial
	stateSize
	stateConfirm
	stateDone
)

// reviewMaterials are the materials offered during review. Unknown is not
// offered: picking it would recreate the problem being reviewed.
var reviewMaterials = []model.Material{model.MaterialCotton, model.MaterialTencel}

// Model holds the review TUI state.
type Model struct {
	storage  service.Storage
	lastErr  error
	current  string
	items    []string
	keymap   KeyMap
	material model.Material
	size     model.SizeBand
	state    state
	cursor   int
	saved    int
	width    int
	height   int
	bundle   bool
	quitting bool
}

// newModel creates a review model over the given unrecognized item names.
func newModel(storage service.Storage, items []string) Model {
	return Model{
		storage: storage,
		items:   items,
		keymap:  DefaultKeyMap(),
		state:   stateList,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case overrideSavedMsg:
		return m.handleSaved(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateList:
		return m.updateList(msg)
	case stateMaterial:
		return m.updateMaterial(msg)
	case stateSize:
		return m.updateSize(msg)
	case stateConfirm:
		return m.updateConfirm(msg)
	case stateDone:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.cursor = moveCursor(m.cursor, -1, len(m.items))
	case key.Matches(msg, m.keymap.Down):
		m.cursor = moveCursor(m.cursor, 1, len(m.items))
	case key.Matches(msg, m.keymap.Select):
		if len(m.items) > 0 {
			m.current = m.items[m.cursor]
			m.material = ""
			m.size = ""
			m.bundle = false
			m.state = stateMaterial
			m.cursor = 0
		}
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateMaterial(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.cursor = moveCursor(m.cursor, -1, len(reviewMaterials))
	case key.Matches(msg, m.keymap.Down):
		m.cursor = moveCursor(m.cursor, 1, len(reviewMaterials))
	case key.Matches(msg, m.keymap.Select):
		m.material = reviewMaterials[m.cursor]
		m.state = stateSize
		m.cursor = 0
	case key.Matches(msg, m.keymap.Back):
		m.state = stateList
		m.cursor = indexOf(m.items, m.current)
	}
	return m, nil
}

func (m Model) updateSize(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	bands := model.AllSizeBands()
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.cursor = moveCursor(m.cursor, -1, len(bands))
	case key.Matches(msg, m.keymap.Down):
		m.cursor = moveCursor(m.cursor, 1, len(bands))
	case key.Matches(msg, m.keymap.Select):
		m.size = bands[m.cursor]
		m.state = stateConfirm
	case key.Matches(msg, m.keymap.Back):
		m.state = stateMaterial
		m.cursor = 0
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Bundle):
		m.bundle = !m.bundle
	case key.Matches(msg, m.keymap.Select):
		return m, saveOverride(m.storage, m.current, model.Product{
			Material: m.material,
			Size:     m.size,
			Bundle:   m.bundle,
		})
	case key.Matches(msg, m.keymap.Back):
		m.state = stateSize
		m.cursor = 0
	}
	return m, nil
}

func (m Model) handleSaved(msg overrideSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.lastErr = msg.err
		m.state = stateList
		m.cursor = indexOf(m.items, msg.item)
		return m, nil
	}

	m.lastErr = nil
	m.saved++
	m.items = removeItem(m.items, msg.item)
	if len(m.items) == 0 {
		m.state = stateDone
		return m, nil
	}
	m.state = stateList
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	} else {
		m.cursor = 0
	}
	return m, nil
}

// moveCursor clamps cursor movement to the list bounds.
func moveCursor(cursor, delta, length int) int {
	next := cursor + delta
	if next < 0 || next >= length {
		return cursor
	}
	return next
}

func indexOf(items []string, item string) int {
	for i, candidate := range items {
		if candidate == item {
			return i
		}
	}
	return 0
}

func removeItem(items []string, item string) []string {
	out := items[:0]
	for _, candidate := range items {
		if candidate != item {
			out = append(out, candidate)
		}
	}
	return out
}
