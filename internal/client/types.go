// Package client provides the REST and WebSocket clients for the MUDPuppy
// gateway. Types mirror the gateway wire protocol without importing server
// packages.
package client

// ConnectionState is the gateway's view of a user's MUD session.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)

// Disconnect reasons reported by the gateway.
const (
	ReasonUser   = "user"
	ReasonIdle   = "idle_timeout"
	ReasonRemote = "remote_close"
	ReasonError  = "error"
)

// User is returned by GET /me.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// SessionStatus is the authoritative snapshot from GET /session/status.
// Superseded on every successful fetch; never persisted.
type SessionStatus struct {
	State            ConnectionState `json:"state"`
	Host             string          `json:"host,omitempty"`
	Port             int             `json:"port,omitempty"`
	ConnectedAt      *string         `json:"connected_at,omitempty"`
	LastActivityAt   *string         `json:"last_activity_at,omitempty"`
	LastError        string          `json:"last_error,omitempty"`
	DisconnectReason string          `json:"disconnect_reason,omitempty"`
}

// ConnectRequest is the body of POST /session/connect.
type ConnectRequest struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ConnectResponse is returned by POST /session/connect.
type ConnectResponse struct {
	State     ConnectionState `json:"state"`
	SessionID string          `json:"session_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// DisconnectResponse is returned by POST /session/disconnect.
type DisconnectResponse struct {
	State  ConnectionState `json:"state"`
	Reason string          `json:"reason,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// FrameType identifies the kind of stream frame.
type FrameType string

const (
	FrameConnect    FrameType = "connect"
	FrameData       FrameType = "data"
	FrameError      FrameType = "error"
	FrameStatus     FrameType = "status"
	FrameDisconnect FrameType = "disconnect"
)

// StatusConnected is the status label that signals the MUD link is up.
const StatusConnected = "connected"

// frame is the wire envelope for both directions of the stream. Exactly one
// payload field is populated per frame; the dispatch loop switches on Type
// exhaustively and never probes the others.
type frame struct {
	Type   FrameType `json:"type"`
	Host   string    `json:"host,omitempty"`
	Port   int       `json:"port,omitempty"`
	Data   string    `json:"data,omitempty"`
	Error  string    `json:"error,omitempty"`
	Status string    `json:"status,omitempty"`
}
