// Package app contains the root Bubble Tea model wiring the session
// coordinator to the terminal UI.
package app

import (
	"context"
	"errors"
	"strings"

	"github.com/amaranth494/MUDPuppy/internal/client"
	"github.com/amaranth494/MUDPuppy/internal/session"
	"github.com/amaranth494/MUDPuppy/internal/theme"
	"github.com/amaranth494/MUDPuppy/internal/views/connect"
	"github.com/amaranth494/MUDPuppy/internal/views/help"
	"github.com/amaranth494/MUDPuppy/internal/views/status"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// maxScrollback caps the retained output buffer.
const maxScrollback = 256 * 1024

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayConnect
	OverlayHelp
)

// SnapshotMsg delivers a coordinator state change.
type SnapshotMsg struct{ Snapshot session.Snapshot }

// OutputMsg delivers raw server output for the scrollback.
type OutputMsg struct{ Data string }

// connectResultMsg reports the outcome of a connect command.
type connectResultMsg struct{ Err error }

// Model is the root Bubble Tea model.
type Model struct {
	co   *session.Coordinator
	lock *session.InputLock

	keys   KeyMap
	width  int
	height int
	ready  bool

	snap    session.Snapshot
	overlay Overlay
	notice  string // inline message, e.g. a rejected quick connect

	termBuf string
	term    viewport.Model
	input   textinput.Model
	spin    spinner.Model

	statusBar   status.Model
	connectForm connect.Model
	helpView    string
}

// New creates the root model.
func New(co *session.Coordinator, lock *session.InputLock, defaultPort int) Model {
	input := textinput.New()
	input.Placeholder = "type a command and press enter"
	input.Prompt = ""
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(theme.ColorConnecting)

	return Model{
		co:          co,
		lock:        lock,
		keys:        DefaultKeyMap(),
		snap:        co.State(),
		input:       input,
		spin:        spin,
		statusBar:   status.New(),
		connectForm: connect.New(defaultPort),
		termBuf:     "Welcome to MUDPuppy!\r\nPress ctrl+o to connect to a MUD server.\r\n\r\n",
	}
}

// Init starts the cursor blink, the spinner, and an initial status refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.refreshCmd())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		bodyHeight := msg.Height - 4
		if bodyHeight < 1 {
			bodyHeight = 1
		}
		if !m.ready {
			m.term = viewport.New(msg.Width, bodyHeight)
			m.term.SetContent(m.termBuf)
			m.term.GotoBottom()
			m.ready = true
		} else {
			m.term.Width = msg.Width
			m.term.Height = bodyHeight
		}
		m.helpView = help.Render(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.snap.State == client.StateConnecting {
			m.statusBar.Spinner = m.spin.View()
		} else {
			m.statusBar.Spinner = ""
		}
		return m, cmd

	case SnapshotMsg:
		return m.applySnapshot(msg.Snapshot), nil

	case OutputMsg:
		m.appendOutput(msg.Data)
		return m, nil

	case connectResultMsg:
		if errors.Is(msg.Err, session.ErrAlreadyActive) {
			// Inline precondition failure, not a session error.
			m.notice = "Already connected. Press ctrl+d to disconnect first."
		}
		return m, nil
	}

	return m, nil
}

// applySnapshot folds a coordinator state change into the UI, echoing
// transitions into the scrollback the way the server's own output appears.
func (m Model) applySnapshot(snap session.Snapshot) Model {
	prev := m.snap
	m.snap = snap
	m.statusBar.State = snap.State
	m.statusBar.Host = snap.Host
	m.statusBar.Port = snap.Port
	m.statusBar.Err = snap.Err

	if prev.State == client.StateConnected && snap.State == client.StateDisconnected {
		line := "\r\n[Disconnected]"
		if snap.DisconnectReason != "" {
			line += " (" + snap.DisconnectReason + ")"
		}
		m.appendOutput(line + "\r\n")
	}
	if snap.Err != "" && snap.Err != prev.Err {
		m.appendOutput("\r\n[ERROR] " + snap.Err + "\r\n")
	}
	if snap.State != prev.State {
		m.notice = ""
	}
	return m
}

func (m *Model) appendOutput(data string) {
	m.termBuf += data
	if len(m.termBuf) > maxScrollback {
		cut := m.termBuf[len(m.termBuf)-maxScrollback:]
		if i := strings.IndexByte(cut, '\n'); i >= 0 {
			cut = cut[i+1:]
		}
		m.termBuf = cut
	}
	if m.ready {
		m.term.SetContent(m.termBuf)
		m.term.GotoBottom()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.overlay != OverlayNone {
		return m.handleOverlayKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Connect):
		m.openOverlay(OverlayConnect)
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.openOverlay(OverlayHelp)
		return m, nil

	case key.Matches(msg, m.keys.Disconnect):
		return m, m.disconnectCmd()

	case key.Matches(msg, m.keys.PageUp):
		m.term.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.term.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeOverlay()
		return m, nil

	case m.overlay == OverlayConnect && key.Matches(msg, m.keys.Enter):
		host, port, err := m.connectForm.Values()
		if err != nil {
			m.connectForm.Err = err.Error()
			return m, nil
		}
		m.closeOverlay()
		return m, m.connectCmd(host, port)
	}

	if m.overlay == OverlayConnect {
		var cmd tea.Cmd
		m.connectForm, cmd = m.connectForm.Update(msg)
		return m, cmd
	}
	return m, nil
}

// submit sends the command line's contents to the MUD. The input lock is
// consulted here, at send time: a submission made while an overlay owns
// focus is discarded, not queued.
func (m *Model) submit() {
	if m.lock.Locked() {
		return
	}
	line := m.input.Value()
	m.input.SetValue("")
	if m.snap.State != client.StateConnected {
		return
	}
	m.co.SendCommand(line + "\n")
	// Local echo; blank lines pass through as a bare CR for MUDs that
	// expect one.
	m.appendOutput(line + "\r\n")
}

func (m *Model) openOverlay(o Overlay) {
	m.overlay = o
	m.lock.SetLocked(true)
	m.input.Blur()
	if o == OverlayConnect {
		m.connectForm.Reset()
	}
}

func (m *Model) closeOverlay() {
	m.overlay = OverlayNone
	m.lock.SetLocked(false)
	m.input.Focus()
}

// --- commands

func (m Model) connectCmd(host string, port int) tea.Cmd {
	co := m.co
	return func() tea.Msg {
		return connectResultMsg{Err: co.Connect(context.Background(), host, port)}
	}
}

func (m Model) disconnectCmd() tea.Cmd {
	co := m.co
	return func() tea.Msg {
		co.Disconnect(context.Background(), client.ReasonUser)
		return nil
	}
}

func (m Model) refreshCmd() tea.Cmd {
	co := m.co
	return func() tea.Msg {
		co.Refresh(context.Background())
		return nil
	}
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	body := m.term.View()
	if m.overlay != OverlayNone {
		var box string
		switch m.overlay {
		case OverlayConnect:
			box = m.connectForm.View()
		case OverlayHelp:
			box = m.helpView
		}
		body = lipgloss.Place(m.width, m.term.Height, lipgloss.Center, lipgloss.Center, box)
	}

	prompt := theme.StylePrompt.Render("> ") + m.input.View()

	footer := theme.StyleDimmed.Render("  ctrl+o:connect  ctrl+d:disconnect  ctrl+g:help  ctrl+c:quit")
	if m.notice != "" {
		footer = theme.StyleError.Render("  " + m.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		body,
		prompt,
		footer,
	)
}
