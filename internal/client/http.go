package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

const apiBase = "/api/v1"

// ErrUnauthenticated is returned when the gateway answers 401. Callers
// redirect to the login flow instead of classifying it as a session error.
var ErrUnauthenticated = errors.New("not authenticated")

// APIError carries the gateway's error string from a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("gateway returned %d", e.Status)
}

// Client makes REST calls to the MUDPuppy gateway. The session credential is
// a cookie, so the underlying http.Client carries a jar shared across calls.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client targeting the given base URL (e.g. "https://mud.example.com").
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// SetTimeout overrides the default request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.client.Timeout = d
	}
}

// Jar exposes the cookie jar so the streaming transport can present the
// same session cookie on its upgrade request.
func (c *Client) Jar() http.CookieJar {
	return c.client.Jar
}

// Me fetches GET /me, the current authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SessionStatus fetches GET /session/status, the authoritative session state.
func (c *Client) SessionStatus(ctx context.Context) (*SessionStatus, error) {
	var s SessionStatus
	if err := c.get(ctx, "/session/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Connect sends POST /session/connect to start proxying to host:port.
func (c *Client) Connect(ctx context.Context, host string, port int) (*ConnectResponse, error) {
	var out ConnectResponse
	if err := c.post(ctx, "/session/connect", ConnectRequest{Host: host, Port: port}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Disconnect sends POST /session/disconnect with an optional reason.
func (c *Client) Disconnect(ctx context.Context, reason string) (*DisconnectResponse, error) {
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	var out DisconnectResponse
	if err := c.post(ctx, "/session/disconnect", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Auth collaborators. Opaque to the session core: each returns the
// gateway error on non-2xx and nothing else.

// SendOTP sends POST /send-otp to mail a one-time code to the address.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	return c.post(ctx, "/send-otp", map[string]string{"email": email}, nil)
}

// Register sends POST /register with the mailed code.
func (c *Client) Register(ctx context.Context, email, password, otp string) error {
	body := map[string]string{"email": email, "password": password, "otp": otp}
	return c.post(ctx, "/register", body, nil)
}

// Login sends POST /login and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.post(ctx, "/login", body, nil)
}

// Logout sends POST /logout, invalidating the session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/logout", nil, nil)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiBase+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiBase+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// checkStatus maps 401 to ErrUnauthenticated and any other non-2xx to an
// APIError carrying the gateway's {error} message.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(resp.Body)
	if json.Unmarshal(data, &payload) != nil || payload.Error == "" {
		payload.Error = string(bytes.TrimSpace(data))
	}
	return &APIError{Status: resp.StatusCode, Message: payload.Error}
}
