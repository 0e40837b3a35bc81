package config

import (
	"path/filepath"
	"testing"
)

func TestResolveDefaultsDerivesJournalPath(t *testing.T) {
	cfg := Config{DataRoot: "/var/lib/messbook", HTTPPort: 8080}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.JournalPath != filepath.Join("/var/lib/messbook", "ledger-intents.db") {
		t.Fatalf("journal path: %q", cfg.JournalPath)
	}
}

func TestResolveDefaultsUsesHomeWhenUnset(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := Config{HTTPPort: 8080}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if filepath.Base(cfg.DataRoot) != "mess-data" {
		t.Fatalf("data root: %q", cfg.DataRoot)
	}
}

func TestResolveDefaultsRejectsBadPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := Config{DataRoot: "/tmp/x", HTTPPort: port}
		if err := cfg.ResolveDefaults(); err == nil {
			t.Errorf("port %d accepted", port)
		}
	}
}

func TestNewReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("MESSBOOK_DATA_ROOT", "/srv/mess")
	t.Setenv("MESSBOOK_HTTP_PORT", "9090")
	t.Setenv("MESSBOOK_JOURNAL_PATH", "off")

	cfg, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if cfg.DataRoot != "/srv/mess" || cfg.HTTPPort != 9090 {
		t.Fatalf("config: %+v", cfg)
	}
	if !cfg.JournalDisabled() {
		t.Fatal("journal should be disabled")
	}
}
