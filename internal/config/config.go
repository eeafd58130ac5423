// Package config loads the client configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
}

type ServerConfig struct {
	URL          string   `yaml:"url"`
	DialTimeout  Duration `yaml:"dial_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

type SessionConfig struct {
	PollInterval Duration `yaml:"poll_interval"`
	DefaultPort  int      `yaml:"default_port"`
}

// Duration parses yaml values like "30s" or "1m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:          "http://127.0.0.1:8080",
			DialTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(10 * time.Second),
		},
		Session: SessionConfig{
			PollInterval: Duration(30 * time.Second),
			DefaultPort:  23,
		},
	}
}

// Load reads the config file at path, applying defaults for anything unset.
// A missing file is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Session.PollInterval <= 0 {
		cfg.Session.PollInterval = Duration(30 * time.Second)
	}
	if cfg.Session.DefaultPort <= 0 {
		cfg.Session.DefaultPort = 23
	}
	if cfg.Server.DialTimeout <= 0 {
		cfg.Server.DialTimeout = Duration(10 * time.Second)
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = Duration(10 * time.Second)
	}
	return cfg, nil
}
