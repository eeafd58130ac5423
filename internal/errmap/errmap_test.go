package errmap

import (
	"strings"
	"testing"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "port whitelist",
			raw:      "port not allowed",
			expected: "Port not allowed by whitelist",
		},
		{
			name:     "port whitelist embedded",
			raw:      "connect failed: port not allowed (allowed: [23 4000])",
			expected: "Port not allowed by whitelist",
		},
		{
			name:     "case insensitive",
			raw:      "Connection Refused by peer",
			expected: "Connection refused by server",
		},
		{
			name:     "dns failure",
			raw:      "dial tcp: lookup mud.invalid: no such host",
			expected: "Could not resolve host",
		},
		{
			name:     "timeout",
			raw:      "read tcp 10.0.0.1:23: i/o timeout",
			expected: "Connection timed out",
		},
		{
			name:     "duplicate session",
			raw:      "user already has active session",
			expected: "You already have an active connection",
		},
		{
			name:     "private address",
			raw:      "host resolves to private IP address",
			expected: "Private addresses not allowed",
		},
		{
			name:     "expired",
			raw:      "session expired",
			expected: "Session expired, please reconnect",
		},
		{
			name:     "no match passes through",
			raw:      "garbage nonsense",
			expected: "garbage nonsense",
		},
		{
			name:     "empty passes through",
			raw:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserMessage(tt.raw)
			if got != tt.expected {
				t.Errorf("UserMessage(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestUserMessageRefusedContainsRefused(t *testing.T) {
	got := UserMessage("Connection refused by peer")
	if !strings.Contains(strings.ToLower(got), "refused") {
		t.Errorf("expected %q to mention refusal", got)
	}
}

func TestUserMessageDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := UserMessage("i/o timeout"); got != "Connection timed out" {
			t.Fatalf("call %d: got %q", i, got)
		}
	}
}
