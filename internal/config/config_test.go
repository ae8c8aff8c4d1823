package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testOptions struct {
	Config       string
	CollectorURI string `toml:"collector.uri" env:"COLLECTOR_URI"`
	WifiIface    string `toml:"network.iface" env:"WIFI_IFACE"`
	APIPort      int    `toml:"api.port" env:"API_PORT"`
	APIEnabled   bool   `toml:"api.enabled" env:"API_ENABLED"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfig(t, `
[collector]
uri = "ws://collector:8080"

[network]
iface = "wlan1"

[api]
port = 9090
enabled = true
`)

	opts := testOptions{Config: path, WifiIface: "wlan0"}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if opts.CollectorURI != "ws://collector:8080" {
		t.Errorf("CollectorURI = %q", opts.CollectorURI)
	}
	if opts.WifiIface != "wlan1" {
		t.Errorf("WifiIface = %q, want wlan1", opts.WifiIface)
	}
	if opts.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", opts.APIPort)
	}
	if !opts.APIEnabled {
		t.Error("APIEnabled = false, want true")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[collector]
uri = "ws://from-file:8080"
`)
	t.Setenv(EnvPrefix+"COLLECTOR_URI", "ws://from-env:8080")

	opts := testOptions{Config: path}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if opts.CollectorURI != "ws://from-env:8080" {
		t.Errorf("CollectorURI = %q, want env value", opts.CollectorURI)
	}
}

func TestLoadConfigMissingFileIsNotFatal(t *testing.T) {
	opts := testOptions{Config: "/nonexistent/config.toml", CollectorURI: "ws://default"}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if opts.CollectorURI != "ws://default" {
		t.Errorf("CollectorURI = %q, want default preserved", opts.CollectorURI)
	}
}

func TestLoadConfigMalformedTOML(t *testing.T) {
	path := writeConfig(t, `not [valid toml`)
	opts := testOptions{Config: path}
	if err := LoadConfig(&opts, nil); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Port", "port"},
		{"LoggingLevel", "logging-level"},
		{"CollectorURI", "collector-uri"},
	}
	for _, tt := range tests {
		if got := fieldNameToFlag(tt.in); got != tt.want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"
format = "json"
transport = "warn"
`)

	cfg := LoadLoggingConfig(path)
	if cfg.Level != "debug" || cfg.Format != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Modules["transport"] != "warn" {
		t.Errorf("module level = %q, want warn", cfg.Modules["transport"])
	}
}
