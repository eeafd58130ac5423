package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConnectSuccess(t *testing.T) {
	var gotBody ConnectRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/session/connect" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(ConnectResponse{State: StateConnecting, SessionID: "abc"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.Connect(context.Background(), "mud.example.com", 4000)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if resp.State != StateConnecting || resp.SessionID != "abc" {
		t.Fatalf("resp = %+v", resp)
	}
	if gotBody.Host != "mud.example.com" || gotBody.Port != 4000 {
		t.Fatalf("request body = %+v", gotBody)
	}
}

func TestConnectBackendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "port not allowed"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Connect(context.Background(), "mud.example.com", 31337)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "port not allowed" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestUnauthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.SessionStatus(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if _, err := c.Me(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Me err = %v, want ErrUnauthenticated", err)
	}
}

func TestSessionStatusDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SessionStatus{
			State:            StateConnected,
			Host:             "mud.example.com",
			Port:             4000,
			LastError:        "",
			DisconnectReason: "",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	st, err := c.SessionStatus(context.Background())
	if err != nil {
		t.Fatalf("SessionStatus: %v", err)
	}
	if st.State != StateConnected || st.Host != "mud.example.com" || st.Port != 4000 {
		t.Fatalf("status = %+v", st)
	}
}

func TestCookieJarCarriesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok"})
			w.Write([]byte("{}"))
		case "/api/v1/session/status":
			if ck, err := r.Cookie("session"); err != nil || ck.Value != "tok" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(SessionStatus{State: StateDisconnected})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.Login(context.Background(), "a@b.c", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := c.SessionStatus(context.Background()); err != nil {
		t.Fatalf("SessionStatus after login: %v", err)
	}
}

func TestDisconnectOmitsEmptyReason(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(DisconnectResponse{State: StateDisconnected})
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Disconnect(context.Background(), ""); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if _, ok := body["reason"]; ok {
		t.Fatalf("empty reason should be omitted, body = %v", body)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.SessionStatus(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "Method not allowed" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}
