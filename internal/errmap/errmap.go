// Package errmap translates raw gateway error strings into stable
// user-facing messages. It is a leaf package with no internal imports.
package errmap

import "strings"

// Mapping pairs a backend phrase with the message shown to the user.
type Mapping struct {
	BackendPhrase string
	UserMessage   string
}

// mappings is ordered: the first case-insensitive substring match wins.
var mappings = []Mapping{
	{"port not allowed", "Port not allowed by whitelist"},
	{"private IP address", "Private addresses not allowed"},
	{"user already has active session", "You already have an active connection"},
	{"connection refused", "Connection refused by server"},
	{"no such host", "Could not resolve host"},
	{"i/o timeout", "Connection timed out"},
	{"session expired", "Session expired, please reconnect"},
}

// UserMessage maps a raw backend error to its user-facing form. Unrecognised
// messages pass through unchanged.
func UserMessage(raw string) string {
	lower := strings.ToLower(raw)
	for _, m := range mappings {
		if strings.Contains(lower, strings.ToLower(m.BackendPhrase)) {
			return m.UserMessage
		}
	}
	return raw
}
