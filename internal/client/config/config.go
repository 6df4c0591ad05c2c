package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the lphoto client.
type Config struct {
	ServerURL    string
	DatabasePath string
	LogLevel     string
	// RequestTimeout bounds each API call and transfer. Zero means calls
	// are bounded only by cancellation.
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "lphoto.db"
	c.LogLevel = "info"
	c.RequestTimeout = 0
}

// LoadConfig constructs a Config from defaults, then the config file named
// in args (if any), then the flags in args. Later sources take precedence.
// args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}
