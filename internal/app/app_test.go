package app

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/amaranth494/MUDPuppy/internal/client"
	"github.com/amaranth494/MUDPuppy/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

type stubGateway struct{}

func (stubGateway) Connect(ctx context.Context, host string, port int) (*client.ConnectResponse, error) {
	return &client.ConnectResponse{State: client.StateConnecting}, nil
}

func (stubGateway) Disconnect(ctx context.Context, reason string) (*client.DisconnectResponse, error) {
	return &client.DisconnectResponse{State: client.StateDisconnected}, nil
}

func (stubGateway) SessionStatus(ctx context.Context) (*client.SessionStatus, error) {
	return &client.SessionStatus{State: client.StateConnecting}, nil
}

type stubTransport struct {
	mu      sync.Mutex
	data    []string
	statusH []func(string)
}

func (t *stubTransport) Open(ctx context.Context) error { return nil }
func (t *stubTransport) SendConnect(string, int)        {}
func (t *stubTransport) SendDisconnect()                {}
func (t *stubTransport) SendData(d string) {
	t.mu.Lock()
	t.data = append(t.data, d)
	t.mu.Unlock()
}
func (t *stubTransport) OnData(func(string))  {}
func (t *stubTransport) OnError(func(string)) {}
func (t *stubTransport) OnStatus(h func(string)) {
	t.statusH = append(t.statusH, h)
}
func (t *stubTransport) OnDisconnect(func()) {}
func (t *stubTransport) Close()              {}

func (t *stubTransport) sent() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.data...)
}

// newConnectedModel builds a model whose coordinator is in the connected
// state, backed by an instrumented transport.
func newConnectedModel(t *testing.T) (Model, *stubTransport, *session.InputLock) {
	t.Helper()
	tr := &stubTransport{}
	co := session.New(stubGateway{}, func() session.Transport { return tr })
	if err := co.Connect(context.Background(), "mud.example.com", 4000); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	for _, h := range tr.statusH {
		h("connected")
	}

	lock := &session.InputLock{}
	m := New(co, lock, 23)
	m2, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model := m2.(Model)
	model = model.applySnapshot(co.State())
	return model, tr, lock
}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestSubmitRespectsInputLock(t *testing.T) {
	m, tr, lock := newConnectedModel(t)

	lock.SetLocked(true)
	m.input.SetValue("north")
	m2, _ := m.Update(keyMsg(tea.KeyEnter))
	m = m2.(Model)

	if got := tr.sent(); len(got) != 0 {
		t.Fatalf("locked submission sent data: %v", got)
	}

	// The discarded attempt was not queued: resubmitting after unlock
	// sends exactly one copy.
	lock.SetLocked(false)
	m2, _ = m.Update(keyMsg(tea.KeyEnter))
	_ = m2
	if got := tr.sent(); len(got) != 1 || got[0] != "north\n" {
		t.Fatalf("sent = %v, want [north\\n]", got)
	}
}

func TestOverlayOwnsInputLock(t *testing.T) {
	m, _, lock := newConnectedModel(t)

	m2, _ := m.Update(keyMsg(tea.KeyCtrlO))
	m = m2.(Model)
	if m.overlay != OverlayConnect {
		t.Fatalf("overlay = %v, want OverlayConnect", m.overlay)
	}
	if !lock.Locked() {
		t.Fatal("opening an overlay must set the input lock")
	}

	m2, _ = m.Update(keyMsg(tea.KeyEscape))
	m = m2.(Model)
	if m.overlay != OverlayNone {
		t.Fatalf("overlay = %v, want OverlayNone", m.overlay)
	}
	if lock.Locked() {
		t.Fatal("closing the overlay must release the input lock")
	}
}

func TestTypedKeysStayOutOfSessionWhileOverlayOpen(t *testing.T) {
	m, tr, _ := newConnectedModel(t)

	m2, _ := m.Update(keyMsg(tea.KeyCtrlO))
	m = m2.(Model)

	// Keystrokes go to the form, and enter submits the form rather than
	// the command line.
	m2, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	m = m2.(Model)
	if got := tr.sent(); len(got) != 0 {
		t.Fatalf("overlay keystroke leaked to the session: %v", got)
	}
}

func TestSubmitRequiresConnectedState(t *testing.T) {
	tr := &stubTransport{}
	co := session.New(stubGateway{}, func() session.Transport { return tr })
	lock := &session.InputLock{}
	m := New(co, lock, 23)
	m2, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = m2.(Model)

	m.input.SetValue("look")
	m2, _ = m.Update(keyMsg(tea.KeyEnter))
	_ = m2
	if got := tr.sent(); len(got) != 0 {
		t.Fatalf("disconnected submission sent data: %v", got)
	}
}

func TestSnapshotEchoesTransitions(t *testing.T) {
	m, _, _ := newConnectedModel(t)

	m = m.applySnapshot(session.Snapshot{
		State:            client.StateDisconnected,
		DisconnectReason: client.ReasonIdle,
	})
	if !strings.Contains(m.termBuf, "[Disconnected] (idle_timeout)") {
		t.Fatalf("scrollback missing disconnect echo:\n%s", m.termBuf)
	}

	m = m.applySnapshot(session.Snapshot{
		State: client.StateError,
		Err:   "Connection timed out",
	})
	if !strings.Contains(m.termBuf, "[ERROR] Connection timed out") {
		t.Fatalf("scrollback missing error echo:\n%s", m.termBuf)
	}
}

func TestViewShowsStateBadge(t *testing.T) {
	m, _, _ := newConnectedModel(t)
	v := m.View()
	if !strings.Contains(v, "connected") {
		t.Error("view should contain the connection state")
	}
	if !strings.Contains(v, "mud.example.com:4000") {
		t.Error("view should contain host:port")
	}
}

func TestAlreadyActiveNotice(t *testing.T) {
	m, _, _ := newConnectedModel(t)
	m2, _ := m.Update(connectResultMsg{Err: session.ErrAlreadyActive})
	m = m2.(Model)
	if m.notice == "" {
		t.Fatal("expected an inline notice for a rejected quick connect")
	}
	v := m.View()
	if !strings.Contains(v, m.notice) {
		t.Error("view should show the inline notice")
	}
}
