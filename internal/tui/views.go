package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/eczema-mitten/mittenpost/internal/cli"
	"github.com/eczema-mitten/mittenpost/internal/model"
)

// View renders the current step of the review flow.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case stateList:
		body = m.renderList()
	case stateMaterial:
		body = m.renderPicker("Material for "+m.current, materialLabels(), m.cursor)
	case stateSize:
		body = m.renderPicker("Size for "+m.current, sizeLabels(), m.cursor)
	case stateConfirm:
		body = m.renderConfirm()
	case stateDone:
		body = m.renderDone()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		cli.FormatTitle("Review unrecognized items"),
		body,
		"",
		m.renderHelp(),
	)
}

func (m Model) renderList() string {
	var b strings.Builder

	b.WriteString(cli.SubtitleStyle.Render(fmt.Sprintf("%d item(s) need classification", len(m.items))))
	b.WriteString("\n")

	for i, item := range m.items {
		cursor := "  "
		line := item
		if i == m.cursor {
			cursor = cli.BoldStyle.Foreground(cli.PrimaryColor).Render("> ")
			line = cli.BoldStyle.Render(item)
		}
		b.WriteString(cursor + line + "\n")
	}

	if m.lastErr != nil {
		b.WriteString("\n" + cli.FormatError("Save failed: "+m.lastErr.Error()))
	}

	return b.String()
}

func (m Model) renderPicker(title string, options []string, cursor int) string {
	var b strings.Builder

	b.WriteString(cli.SubtitleStyle.Render(title))
	b.WriteString("\n")

	for i, option := range options {
		prefix := "  "
		line := option
		if i == cursor {
			prefix = cli.BoldStyle.Foreground(cli.PrimaryColor).Render("> ")
			line = cli.BoldStyle.Render(option)
		}
		b.WriteString(prefix + line + "\n")
	}

	return b.String()
}

func (m Model) renderConfirm() string {
	bundle := "single pair"
	if m.bundle {
		bundle = "bundle of 2"
	}

	summary := fmt.Sprintf("%s\n  %s %s, %s",
		cli.BoldStyle.Render(m.current),
		string(m.material), string(m.size), bundle)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		cli.SubtitleStyle.Render("Save this classification?"),
		summary,
		"",
		cli.SubtleStyle.Render("enter to save, b to toggle bundle, esc to go back"),
	)
}

func (m Model) renderDone() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		cli.FormatSuccess(fmt.Sprintf("Classified %d item(s)", m.saved)),
		cli.SubtleStyle.Render("Overrides apply on the next convert run."),
		"",
		cli.SubtleStyle.Render("Press any key to exit."),
	)
}

func (m Model) renderHelp() string {
	var parts []string
	for _, binding := range m.keymap.ShortHelp() {
		parts = append(parts, fmt.Sprintf("%s %s", binding.Help().Key, binding.Help().Desc))
	}
	return cli.SubtleStyle.Render(strings.Join(parts, " • "))
}

func materialLabels() []string {
	labels := make([]string, len(reviewMaterials))
	for i, material := range reviewMaterials {
		labels[i] = string(material)
	}
	return labels
}

func sizeLabels() []string {
	bands := model.AllSizeBands()
	labels := make([]string, len(bands))
	for i, band := range bands {
		labels[i] = string(band)
	}
	return labels
}
