package model

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_LoadConfig_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	def := DefaultAppConfig()
	if cfg.Backend.URL != def.Backend.URL {
		t.Errorf("Backend.URL = %q, want %q", cfg.Backend.URL, def.Backend.URL)
	}
	if cfg.Stream.MaxReconnectAttempts != 5 || cfg.Stream.ReconnectDelayMs != 1000 {
		t.Errorf("stream defaults = %+v", cfg.Stream)
	}
	if cfg.Socket.ReconnectDelayMs != 3000 || cfg.Socket.PingIntervalSec != 30 {
		t.Errorf("socket defaults = %+v", cfg.Socket)
	}
	if cfg.Center.PollIntervalSec != 10 {
		t.Errorf("Center.PollIntervalSec = %d, want 10", cfg.Center.PollIntervalSec)
	}
	if cfg.Toast.DurationMs != 6000 {
		t.Errorf("Toast.DurationMs = %d, want 6000", cfg.Toast.DurationMs)
	}
	if !cfg.Alerts.Sound || !cfg.Alerts.Desktop {
		t.Errorf("alerts should default on: %+v", cfg.Alerts)
	}
	if cfg.Realtime.Transport != "sse" {
		t.Errorf("Realtime.Transport = %q, want sse", cfg.Realtime.Transport)
	}
	if cfg.Storage.LogLevel != "info" {
		t.Errorf("Storage.LogLevel = %q, want info", cfg.Storage.LogLevel)
	}
	if cfg.Alerts.DesktopTimeoutMs != 5000 {
		t.Errorf("Alerts.DesktopTimeoutMs = %d, want 5000", cfg.Alerts.DesktopTimeoutMs)
	}
}

func Test_LoadConfig_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
backend:
  url: https://api.example.com/
realtime:
  transport: WebSocket
center:
  poll_interval_sec: 20
alerts:
  sound: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend.URL != "https://api.example.com" {
		t.Errorf("trailing slash not trimmed: %q", cfg.Backend.URL)
	}
	if cfg.Realtime.Transport != "websocket" {
		t.Errorf("Transport = %q, want websocket", cfg.Realtime.Transport)
	}
	if cfg.Center.PollIntervalSec != 20 {
		t.Errorf("PollIntervalSec = %d, want 20", cfg.Center.PollIntervalSec)
	}
	if cfg.Alerts.Sound {
		t.Error("Alerts.Sound should be false")
	}
	if !cfg.Alerts.Desktop {
		t.Error("Alerts.Desktop should keep its default")
	}
	if cfg.Stream.MaxReconnectAttempts != 5 {
		t.Errorf("unset stream section lost defaults: %+v", cfg.Stream)
	}
}

func Test_LoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("RAAMA_BACKEND_URL", "http://localhost:8001")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend.URL != "http://localhost:8001" {
		t.Errorf("Backend.URL = %q, want env value", cfg.Backend.URL)
	}
}

func Test_LoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func Test_SaveConfig_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.Display.Theme = "light"
	cfg.Alerts.Desktop = false

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Display.Theme != "light" {
		t.Errorf("Theme = %q, want light", got.Display.Theme)
	}
	if got.Alerts.Desktop {
		t.Error("Alerts.Desktop should be false after roundtrip")
	}
}

func Test_LoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RAAMA_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RAAMA_TEST_DOTENV", "")
	os.Unsetenv("RAAMA_TEST_DOTENV")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("RAAMA_TEST_DOTENV"); got != "from-file" {
		t.Errorf("RAAMA_TEST_DOTENV = %q, want from-file", got)
	}
}
