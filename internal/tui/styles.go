package tui

import "github.com/charmbracelet/lipgloss"

var styles = newPalette()

type palette struct {
	title       lipgloss.Style
	status      lipgloss.Style
	err         lipgloss.Style
	muted       lipgloss.Style
	lightSquare lipgloss.Style
	darkSquare  lipgloss.Style
	piece       lipgloss.Color
	coord       lipgloss.Style
	active      lipgloss.Style
	selected    lipgloss.Style
	entry       lipgloss.Style
	panel       lipgloss.Style
}

func newPalette() palette {
	return palette{
		title:       lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		status:      lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		err:         lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true),
		muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true),
		lightSquare: lipgloss.NewStyle().Background(lipgloss.Color("#EEEED2")),
		darkSquare:  lipgloss.NewStyle().Background(lipgloss.Color("#769656")),
		piece:       lipgloss.Color("#000000"),
		coord:       lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A")),
		active:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true),
		selected:    lipgloss.NewStyle().Reverse(true),
		entry:       lipgloss.NewStyle(),
		panel:       lipgloss.NewStyle().Padding(0, 2),
	}
}
