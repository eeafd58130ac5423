package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "http://127.0.0.1:8080" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Session.PollInterval.Std() != 30*time.Second {
		t.Errorf("PollInterval = %v", cfg.Session.PollInterval)
	}
	if cfg.Session.DefaultPort != 23 {
		t.Errorf("DefaultPort = %d", cfg.Session.DefaultPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  url: https://mud.example.com
session:
  poll_interval: 10s
  default_port: 4000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "https://mud.example.com" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Session.PollInterval.Std() != 10*time.Second {
		t.Errorf("PollInterval = %v", cfg.Session.PollInterval)
	}
	if cfg.Session.DefaultPort != 4000 {
		t.Errorf("DefaultPort = %d", cfg.Session.DefaultPort)
	}
}

func TestLoadPartialKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  url: http://10.0.0.5:9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "http://10.0.0.5:9000" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Session.DefaultPort != 23 {
		t.Errorf("DefaultPort = %d, want default kept", cfg.Session.DefaultPort)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
