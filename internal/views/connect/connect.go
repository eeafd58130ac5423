// Package connect provides the quick-connect overlay: a host/port form
// submitted with enter.
package connect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amaranth494/MUDPuppy/internal/theme"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the form state.
type Model struct {
	host textinput.Model
	port textinput.Model
	// 0 = host field, 1 = port field
	focus       int
	defaultPort int
	Err         string
}

// New creates the form with the configured default port prefilled.
func New(defaultPort int) Model {
	host := textinput.New()
	host.Placeholder = "game.example.com"
	host.CharLimit = 255
	host.Width = 32
	host.Focus()

	if defaultPort <= 0 {
		defaultPort = 23
	}

	port := textinput.New()
	port.Placeholder = strconv.Itoa(defaultPort)
	port.CharLimit = 5
	port.Width = 8
	port.SetValue(strconv.Itoa(defaultPort))

	return Model{host: host, port: port, defaultPort: defaultPort}
}

// Reset clears the host field and any error, refocusing the form.
func (m *Model) Reset() {
	m.host.SetValue("")
	m.Err = ""
	m.focus = 0
	m.host.Focus()
	m.port.Blur()
}

// Update routes key input to the focused field and handles tab cycling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "shift+tab", "down", "up":
			m.focus = (m.focus + 1) % 2
			if m.focus == 0 {
				m.host.Focus()
				m.port.Blur()
			} else {
				m.host.Blur()
				m.port.Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.host, cmd = m.host.Update(msg)
	} else {
		m.port, cmd = m.port.Update(msg)
	}
	return m, cmd
}

// Values validates the form and returns host and port.
func (m Model) Values() (string, int, error) {
	host := strings.TrimSpace(m.host.Value())
	if host == "" {
		return "", 0, fmt.Errorf("host is required")
	}
	portStr := strings.TrimSpace(m.port.Value())
	if portStr == "" {
		return host, m.defaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("port must be between 1-65535")
	}
	return host, port, nil
}

// View renders the bordered form.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("Quick Connect"))
	b.WriteString("\n\n")
	b.WriteString("Host: " + m.host.View() + "\n")
	b.WriteString("Port: " + m.port.View() + "\n")
	if m.Err != "" {
		b.WriteString("\n" + theme.StyleError.Render(m.Err) + "\n")
	}
	b.WriteString("\n" + theme.StyleDimmed.Render("enter:connect  tab:switch field  esc:cancel"))

	return theme.StyleModal.Render(b.String())
}
