package connect

import "testing"

func TestValuesUsesConfiguredDefaultPort(t *testing.T) {
	m := New(4000)
	if m.port.Placeholder != "4000" {
		t.Errorf("port placeholder = %q, want %q", m.port.Placeholder, "4000")
	}

	m.host.SetValue("mud.example.com")
	m.port.SetValue("")
	host, port, err := m.Values()
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if host != "mud.example.com" || port != 4000 {
		t.Fatalf("Values = %q:%d, want mud.example.com:4000", host, port)
	}
}

func TestValuesValidation(t *testing.T) {
	tests := []struct {
		name string
		host string
		port string
	}{
		{"empty host", "", "23"},
		{"port not a number", "mud.example.com", "abc"},
		{"port zero", "mud.example.com", "0"},
		{"port too large", "mud.example.com", "70000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(23)
			m.host.SetValue(tt.host)
			m.port.SetValue(tt.port)
			if _, _, err := m.Values(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestNewPrefillsPort(t *testing.T) {
	m := New(0)
	host, _, err := m.Values()
	if err == nil || host != "" {
		t.Fatal("empty host must not validate")
	}
	if got := m.port.Value(); got != "23" {
		t.Errorf("port prefill = %q, want 23", got)
	}
}
