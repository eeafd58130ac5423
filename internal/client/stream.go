package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 10 * time.Second
)

// ErrTransportUnavailable is returned by Open when the stream cannot be
// established (network failure, handshake rejection).
var ErrTransportUnavailable = fmt.Errorf("stream unavailable")

// Stream owns one WebSocket connection to the gateway's session stream. It
// frames the outbound vocabulary (connect, data, disconnect) and fans
// inbound frames out to per-variant subscribers in arrival order.
//
// A Stream is single-use: once closed it cannot be reopened. Callers open a
// fresh Stream per connect attempt.
type Stream struct {
	url          string
	dialer       *websocket.Dialer
	writeTimeout time.Duration

	mu         sync.Mutex
	writeMu    sync.Mutex // serialises all conn writes
	dispatchMu sync.Mutex // held for the whole fan-out of each inbound frame
	conn       *websocket.Conn
	closed     bool

	dataHandlers       []func(string)
	errorHandlers      []func(string)
	statusHandlers     []func(string)
	disconnectHandlers []func()

	disconnectOnce sync.Once
}

// NewStream creates a stream for the gateway at baseURL (an http/https URL).
// The cookie jar must be the REST client's jar so the handshake carries the
// session credential.
func NewStream(baseURL string, jar http.CookieJar) *Stream {
	return &Stream{
		url: streamURL(baseURL),
		dialer: &websocket.Dialer{
			HandshakeTimeout: defaultHandshakeTimeout,
			Jar:              jar,
		},
		writeTimeout: defaultWriteTimeout,
	}
}

// SetTimeouts overrides the handshake and write deadlines. Zero values keep
// the defaults. Must be called before Open.
func (s *Stream) SetTimeouts(handshake, write time.Duration) {
	if handshake > 0 {
		s.dialer.HandshakeTimeout = handshake
	}
	if write > 0 {
		s.writeTimeout = write
	}
}

// streamURL converts http(s)://host → ws(s)://host/api/v1/session/stream.
func streamURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	switch {
	case u.Scheme == "https":
		u.Scheme = "wss"
	case strings.HasPrefix(u.Scheme, "ws"):
		// already a websocket URL
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + apiBase + "/session/stream"
	return u.String()
}

// OnData registers a handler for inbound server output. All registered
// handlers run for every frame, in registration order.
func (s *Stream) OnData(h func(data string)) {
	s.mu.Lock()
	s.dataHandlers = append(s.dataHandlers, h)
	s.mu.Unlock()
}

// OnError registers a handler for inbound error frames.
func (s *Stream) OnError(h func(message string)) {
	s.mu.Lock()
	s.errorHandlers = append(s.errorHandlers, h)
	s.mu.Unlock()
}

// OnStatus registers a handler for inbound status frames.
func (s *Stream) OnStatus(h func(status string)) {
	s.mu.Lock()
	s.statusHandlers = append(s.statusHandlers, h)
	s.mu.Unlock()
}

// OnDisconnect registers a handler invoked exactly once when the stream ends,
// whether the gateway sent a disconnect frame, the socket dropped, or Close
// was called locally.
func (s *Stream) OnDisconnect(h func()) {
	s.mu.Lock()
	s.disconnectHandlers = append(s.disconnectHandlers, h)
	s.mu.Unlock()
}

// Open dials the stream and starts the read loop. It returns once the
// transport is ready to send.
func (s *Stream) Open(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return fmt.Errorf("%w: stream already closed", ErrTransportUnavailable)
	}
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop(conn)
	return nil
}

// SendConnect asks the gateway to open the MUD link. The REST connect call
// and this frame are both required; the gateway associates the two.
func (s *Stream) SendConnect(host string, port int) {
	s.send(frame{Type: FrameConnect, Host: host, Port: port})
}

// SendData forwards a line of user input to the MUD.
func (s *Stream) SendData(data string) {
	s.send(frame{Type: FrameData, Data: data})
}

// SendDisconnect asks the gateway to drop the MUD link.
func (s *Stream) SendDisconnect() {
	s.send(frame{Type: FrameDisconnect})
}

// send is fire-and-forget: frames are silently dropped when the stream is
// not open. Callers must not assume delivery across a close.
func (s *Stream) send(f frame) {
	s.mu.Lock()
	conn := s.conn
	closed := s.closed
	s.mu.Unlock()
	if conn == nil || closed {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := conn.WriteJSON(f); err != nil {
		log.Printf("stream write error: %v", err)
	}
}

// Close tears the stream down. Idempotent. No data, error, or status events
// are dispatched after it returns; the disconnect event still fires (once).
// Must not be called from an event handler: it waits for any fan-out already
// in progress to finish.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	// closed is set, so no new fan-out starts; wait out the one that may
	// already hold the lock before declaring the stream quiet.
	s.dispatchMu.Lock()
	s.dispatchMu.Unlock()

	s.fireDisconnect()
}

// readLoop reads frames until the connection dies or Close is called,
// dispatching each to its subscribers in arrival order.
func (s *Stream) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			wasClosed := s.closed
			s.closed = true
			s.conn = nil
			s.mu.Unlock()
			conn.Close()
			if !wasClosed {
				log.Printf("stream closed: %v", err)
			}
			s.fireDisconnect()
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			// Malformed frames are dropped, never surfaced. Subsequent
			// valid frames still arrive in order.
			log.Printf("stream: dropping malformed frame: %v", err)
			continue
		}

		s.dispatchMu.Lock()
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			s.dispatchMu.Unlock()
			return
		}
		dataHs := s.dataHandlers
		errorHs := s.errorHandlers
		statusHs := s.statusHandlers
		s.mu.Unlock()

		switch f.Type {
		case FrameData:
			for _, h := range dataHs {
				h(f.Data)
			}
		case FrameError:
			for _, h := range errorHs {
				h(f.Error)
			}
		case FrameStatus:
			for _, h := range statusHs {
				h(f.Status)
			}
		case FrameDisconnect:
			s.mu.Lock()
			s.closed = true
			s.conn = nil
			s.mu.Unlock()
			conn.Close()
			s.fireDisconnect()
			s.dispatchMu.Unlock()
			return
		case FrameConnect:
			// Outbound-only type; ignore if echoed back.
		default:
			log.Printf("stream: dropping frame of unknown type %q", f.Type)
		}
		s.dispatchMu.Unlock()
	}
}

func (s *Stream) fireDisconnect() {
	s.disconnectOnce.Do(func() {
		s.mu.Lock()
		hs := s.disconnectHandlers
		s.mu.Unlock()
		for _, h := range hs {
			h()
		}
	})
}
