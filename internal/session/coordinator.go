// Package session owns the client-side connection state machine. It mediates
// between user intent (connect/disconnect), the streaming transport's
// lifecycle events, and the gateway's polled status, keeping the three
// mutually consistent.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/amaranth494/MUDPuppy/internal/client"
	"github.com/amaranth494/MUDPuppy/internal/errmap"
)

// ErrAlreadyActive is returned by Connect while a connection is already
// being established or is up. It is an inline precondition failure: the
// canonical state does not move to error.
var ErrAlreadyActive = errors.New("a connection is already active")

// Gateway is the REST surface the coordinator drives. *client.Client
// implements it.
type Gateway interface {
	Connect(ctx context.Context, host string, port int) (*client.ConnectResponse, error)
	Disconnect(ctx context.Context, reason string) (*client.DisconnectResponse, error)
	SessionStatus(ctx context.Context) (*client.SessionStatus, error)
}

// Transport is one streaming connection to the gateway. *client.Stream
// implements it. Transports are single-use; the coordinator requests a fresh
// one per connect attempt.
type Transport interface {
	Open(ctx context.Context) error
	SendConnect(host string, port int)
	SendData(data string)
	SendDisconnect()
	OnData(func(data string))
	OnError(func(message string))
	OnStatus(func(status string))
	OnDisconnect(func())
	Close()
}

// Snapshot is a read-only copy of the coordinator's state, handed to the UI
// on every change.
type Snapshot struct {
	State            client.ConnectionState
	Host             string
	Port             int
	Err              string // classified, user-facing; empty when none
	DisconnectReason string
}

// Coordinator is the single owner of the canonical connection state and of
// the live transport handle. All mutation happens here; every other
// component reads snapshots or posts through its operations.
type Coordinator struct {
	gateway      Gateway
	newTransport func() Transport

	mu        sync.Mutex
	gen       uint64 // bumped on every canonical-state-mutating operation
	state     client.ConnectionState
	host      string
	port      int
	errMsg    string
	reason    string
	transport Transport

	sink     func(data string) // terminal sink for raw server output
	onChange func(Snapshot)
}

// New creates a coordinator in the disconnected state. newTransport is
// invoked once per connect attempt.
func New(gateway Gateway, newTransport func() Transport) *Coordinator {
	return &Coordinator{
		gateway:      gateway,
		newTransport: newTransport,
		state:        client.StateDisconnected,
	}
}

// SetSink installs the terminal sink that receives raw server output.
func (c *Coordinator) SetSink(sink func(data string)) {
	c.mu.Lock()
	c.sink = sink
	c.mu.Unlock()
}

// SetOnChange installs a hook invoked (outside the coordinator's lock) after
// every state change.
func (c *Coordinator) SetOnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// State returns the current snapshot.
func (c *Coordinator) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	return Snapshot{
		State:            c.state,
		Host:             c.host,
		Port:             c.port,
		Err:              c.errMsg,
		DisconnectReason: c.reason,
	}
}

// Connect establishes a session to host:port. Precondition: the current
// state is disconnected or error; otherwise it fails with ErrAlreadyActive
// and performs no REST call and no transport open.
//
// It returns once the REST call and transport open succeed; the transition
// to connected arrives asynchronously via a streamed status frame. On any
// failure the state is error, a classified message is surfaced, and no
// transport handle is left dangling.
func (c *Coordinator) Connect(ctx context.Context, host string, port int) error {
	c.mu.Lock()
	if c.state == client.StateConnecting || c.state == client.StateConnected {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	c.gen++
	gen := c.gen
	old := c.transport
	c.transport = nil
	c.state = client.StateConnecting
	c.errMsg = ""
	c.reason = ""
	c.mu.Unlock()

	// A handle may survive an error state; replace it before dialing anew.
	if old != nil {
		old.Close()
	}
	c.notify()

	if _, err := c.gateway.Connect(ctx, host, port); err != nil {
		c.fail(gen, err)
		return err
	}

	t := c.newTransport()
	t.OnData(func(data string) { c.streamData(gen, data) })
	t.OnError(func(msg string) { c.streamError(gen, msg) })
	t.OnStatus(func(status string) {
		if status == client.StatusConnected {
			c.streamConnected(gen, host, port)
		}
	})
	t.OnDisconnect(func() { c.streamClosed(gen) })

	if err := t.Open(ctx); err != nil {
		c.fail(gen, err)
		t.Close()
		return err
	}

	c.mu.Lock()
	if c.gen != gen {
		// A disconnect raced the open; drop the new handle.
		c.mu.Unlock()
		t.Close()
		return nil
	}
	c.transport = t
	c.mu.Unlock()

	// The gateway associates the REST session with the stream via this frame.
	t.SendConnect(host, port)

	c.refresh(ctx, gen)
	return nil
}

// Disconnect tears the session down. The transport handle is closed before
// anything else, so no further inbound events are dispatched; the local
// state reflects disconnection even if the REST call then fails.
func (c *Coordinator) Disconnect(ctx context.Context, reason string) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	t := c.transport
	c.transport = nil
	c.state = client.StateDisconnected
	c.host = ""
	c.port = 0
	c.reason = reason
	c.mu.Unlock()

	if t != nil {
		t.SendDisconnect()
		t.Close()
	}
	c.notify()

	if _, err := c.gateway.Disconnect(ctx, reason); err != nil {
		c.surface(gen, err)
		return err
	}

	c.refresh(ctx, gen)
	return nil
}

// SendCommand forwards one line of user input over the live transport. It is
// a no-op unless the state is connected.
func (c *Coordinator) SendCommand(line string) {
	c.mu.Lock()
	t := c.transport
	connected := c.state == client.StateConnected
	c.mu.Unlock()
	if t == nil || !connected {
		return
	}
	t.SendData(line)
}

// Refresh fetches the authoritative status and reconciles it with the local
// state. A result that arrives after a newer Connect/Disconnect has run is
// discarded, so a slow fetch can never resurrect a stale connected state.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	return c.refresh(ctx, gen)
}

func (c *Coordinator) refresh(ctx context.Context, gen uint64) error {
	status, err := c.gateway.SessionStatus(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil // superseded by a newer operation
	}
	if status.State == client.StateConnected && c.state != client.StateConnected {
		// The gateway holds a live session this process never saw, e.g.
		// after a restart of the client. Adopt it.
		c.state = client.StateConnected
		c.host = status.Host
		c.port = status.Port
	}
	if status.LastError != "" {
		c.errMsg = errmap.UserMessage(status.LastError)
	}
	if status.DisconnectReason != "" {
		// The fetch started after the most recent local operation, so the
		// gateway's reason is the newer one.
		c.reason = status.DisconnectReason
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// --- stream event handlers; each carries the generation it was registered
// under and is ignored once the handle has been replaced.

func (c *Coordinator) streamData(gen uint64, data string) {
	c.mu.Lock()
	current := gen == c.gen
	sink := c.sink
	c.mu.Unlock()
	if current && sink != nil {
		sink(data)
	}
}

func (c *Coordinator) streamConnected(gen uint64, host string, port int) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = client.StateConnected
	c.host = host
	c.port = port
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()
}

func (c *Coordinator) streamError(gen uint64, msg string) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.state = client.StateError
	c.errMsg = errmap.UserMessage(msg)
	t := c.transport
	c.transport = nil
	c.mu.Unlock()
	if t != nil {
		// This handler runs on the transport's dispatch goroutine, and
		// Close waits for dispatch to drain; close from the outside.
		go t.Close()
	}
	c.notify()
}

// streamClosed handles the transport's disconnect event: the session is over
// regardless of which side initiated the close. A reconciliation runs so the
// gateway's disconnect reason can be picked up.
func (c *Coordinator) streamClosed(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	newGen := c.gen
	c.state = client.StateDisconnected
	c.host = ""
	c.port = 0
	c.transport = nil
	c.mu.Unlock()
	c.notify()

	go c.refresh(context.Background(), newGen)
}

// fail records a failed connect attempt: classified message, error state.
// It bumps the generation so late events from the aborted attempt's handle
// are discarded rather than overwriting the error.
func (c *Coordinator) fail(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.state = client.StateError
	c.errMsg = userMessage(err)
	c.mu.Unlock()
	c.notify()
}

// surface records an error message without moving the canonical state.
func (c *Coordinator) surface(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.errMsg = userMessage(err)
	c.mu.Unlock()
	c.notify()
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	fn := c.onChange
	snap := c.snapshotLocked()
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// userMessage classifies an error for display. Authentication failures are
// not classified; the layer above redirects to the login flow.
func userMessage(err error) string {
	if errors.Is(err, client.ErrUnauthenticated) {
		return "Not logged in. Run 'mudpuppy login' first."
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return errmap.UserMessage(apiErr.Message)
	}
	return errmap.UserMessage(err.Error())
}
