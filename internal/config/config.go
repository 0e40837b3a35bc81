package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the mess bookkeeping service.
// Environment variables are parsed from the MESSBOOK_ prefix, e.g.
// MESSBOOK_DATA_ROOT, MESSBOOK_HTTP_PORT.
type Config struct {
	// DataRoot is the directory holding one subdirectory per collection.
	// Defaults to ~/mess-data when unset.
	DataRoot string `envconfig:"DATA_ROOT" default:""`

	// JournalPath is the sqlite intent journal location. Defaults to
	// <DataRoot>/ledger-intents.db. Set to "off" to disable the journal.
	JournalPath string `envconfig:"JOURNAL_PATH" default:""`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`
}

// ResolveDefaults derives DataRoot and JournalPath when unset.
func (c *Config) ResolveDefaults() error {
	if c.DataRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		c.DataRoot = filepath.Join(home, "mess-data")
	}
	if c.JournalPath == "" {
		c.JournalPath = filepath.Join(c.DataRoot, "ledger-intents.db")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	return nil
}

// JournalDisabled reports whether the intent journal is switched off.
func (c *Config) JournalDisabled() bool { return c.JournalPath == "off" }

// New creates a Config by parsing MESSBOOK_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("MESSBOOK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
