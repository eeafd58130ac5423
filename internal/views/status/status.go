// Package status renders the connection status bar.
package status

import (
	"fmt"

	"github.com/amaranth494/MUDPuppy/internal/client"
	"github.com/amaranth494/MUDPuppy/internal/theme"
	"github.com/charmbracelet/lipgloss"
)

// Model holds the status bar state.
type Model struct {
	State   client.ConnectionState
	Host    string
	Port    int
	Err     string
	Spinner string // rendered spinner frame, shown while connecting
	Width   int
}

// New creates a status bar model.
func New() Model {
	return Model{State: client.StateDisconnected}
}

// glyph returns the badge symbol for the current state.
func (m Model) glyph() string {
	switch m.State {
	case client.StateConnected:
		return "●"
	case client.StateConnecting:
		if m.Spinner != "" {
			return m.Spinner
		}
		return "◌"
	case client.StateError:
		return "✗"
	default:
		return "○"
	}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	badge := lipgloss.NewStyle().
		Foreground(theme.StateColor(string(m.State))).
		Render(fmt.Sprintf("%s %s", m.glyph(), m.State))

	content := badge
	if m.Host != "" {
		content += theme.StyleDimmed.Render(" | ") +
			fmt.Sprintf("%s:%d", m.Host, m.Port)
	}
	if m.Err != "" {
		content += theme.StyleDimmed.Render(" | ") +
			theme.StyleError.Render(m.Err)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
