package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBackendURL is the production API host.
const DefaultBackendURL = "https://raama-backend-srrb.onrender.com"

// BackendConfig locates the REST API.
type BackendConfig struct {
	// URL is the scheme and host of the backend, without the /api suffix.
	URL string `mapstructure:"url" yaml:"url"`

	// TimeoutSec bounds every non-streaming request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// RealtimeConfig selects the realtime transport.
type RealtimeConfig struct {
	// Transport is "sse", "websocket" or "none".
	Transport string `mapstructure:"transport" yaml:"transport"`

	// AllowLocal lifts the guard that skips realtime connections to
	// local development hosts.
	AllowLocal bool `mapstructure:"allow_local" yaml:"allow_local"`
}

// StreamConfig tunes the server-sent events channel.
type StreamConfig struct {
	MaxReconnectAttempts int `mapstructure:"max_reconnect_attempts" yaml:"max_reconnect_attempts"`
	ReconnectDelayMs     int `mapstructure:"reconnect_delay_ms" yaml:"reconnect_delay_ms"`
	FallbackPollSec      int `mapstructure:"fallback_poll_sec" yaml:"fallback_poll_sec"`
}

// SocketConfig tunes the websocket channel.
type SocketConfig struct {
	MaxReconnectAttempts int `mapstructure:"max_reconnect_attempts" yaml:"max_reconnect_attempts"`
	ReconnectDelayMs     int `mapstructure:"reconnect_delay_ms" yaml:"reconnect_delay_ms"`
	PingIntervalSec      int `mapstructure:"ping_interval_sec" yaml:"ping_interval_sec"`
}

// CenterConfig controls the notification center.
type CenterConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// ToastConfig controls in-app toasts.
type ToastConfig struct {
	DurationMs int `mapstructure:"duration_ms" yaml:"duration_ms"`
}

// AlertsConfig toggles the audible and desktop sinks.
type AlertsConfig struct {
	Sound            bool `mapstructure:"sound" yaml:"sound"`
	Desktop          bool `mapstructure:"desktop" yaml:"desktop"`
	DesktopTimeoutMs int  `mapstructure:"desktop_timeout_ms" yaml:"desktop_timeout_ms"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// StorageConfig locates local files.
type StorageConfig struct {
	Path    string `mapstructure:"path" yaml:"path"`
	LogPath string `mapstructure:"log_path" yaml:"log_path"`
	// LogLevel is a logrus level name: debug, info, warn or error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend  BackendConfig  `mapstructure:"backend" yaml:"backend"`
	Realtime RealtimeConfig `mapstructure:"realtime" yaml:"realtime"`
	Stream   StreamConfig   `mapstructure:"stream" yaml:"stream"`
	Socket   SocketConfig   `mapstructure:"socket" yaml:"socket"`
	Center   CenterConfig   `mapstructure:"center" yaml:"center"`
	Toast    ToastConfig    `mapstructure:"toast" yaml:"toast"`
	Alerts   AlertsConfig   `mapstructure:"alerts" yaml:"alerts"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
}

// configDir returns ~/.config/raama, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "raama")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/raama/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		Backend: BackendConfig{
			URL:        DefaultBackendURL,
			TimeoutSec: 30,
		},
		Realtime: RealtimeConfig{
			Transport: "sse",
		},
		Stream: StreamConfig{
			MaxReconnectAttempts: 5,
			ReconnectDelayMs:     1000,
			FallbackPollSec:      30,
		},
		Socket: SocketConfig{
			MaxReconnectAttempts: 5,
			ReconnectDelayMs:     3000,
			PingIntervalSec:      30,
		},
		Center: CenterConfig{
			PollIntervalSec: 10,
		},
		Toast: ToastConfig{
			DurationMs: 6000,
		},
		Alerts: AlertsConfig{
			Sound:            true,
			Desktop:          true,
			DesktopTimeoutMs: 5000,
		},
		Display: DisplayConfig{
			Theme: "dark",
		},
		Storage: StorageConfig{
			Path:     filepath.Join(dir, "raama.db"),
			LogPath:  filepath.Join(dir, "raama.log"),
			LogLevel: "info",
		},
	}
}

// setDefaults registers every key with viper so environment overrides
// resolve even when the file omits a section.
func setDefaults(v *viper.Viper, d *AppConfig) {
	v.SetDefault("backend.url", d.Backend.URL)
	v.SetDefault("backend.timeout_sec", d.Backend.TimeoutSec)
	v.SetDefault("realtime.transport", d.Realtime.Transport)
	v.SetDefault("realtime.allow_local", d.Realtime.AllowLocal)
	v.SetDefault("stream.max_reconnect_attempts", d.Stream.MaxReconnectAttempts)
	v.SetDefault("stream.reconnect_delay_ms", d.Stream.ReconnectDelayMs)
	v.SetDefault("stream.fallback_poll_sec", d.Stream.FallbackPollSec)
	v.SetDefault("socket.max_reconnect_attempts", d.Socket.MaxReconnectAttempts)
	v.SetDefault("socket.reconnect_delay_ms", d.Socket.ReconnectDelayMs)
	v.SetDefault("socket.ping_interval_sec", d.Socket.PingIntervalSec)
	v.SetDefault("center.poll_interval_sec", d.Center.PollIntervalSec)
	v.SetDefault("toast.duration_ms", d.Toast.DurationMs)
	v.SetDefault("alerts.sound", d.Alerts.Sound)
	v.SetDefault("alerts.desktop", d.Alerts.Desktop)
	v.SetDefault("alerts.desktop_timeout_ms", d.Alerts.DesktopTimeoutMs)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.log_path", d.Storage.LogPath)
	v.SetDefault("storage.log_level", d.Storage.LogLevel)
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment. Missing files are skipped; variables that are
// already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig reads configuration from the given YAML file path using Viper,
// with RAAMA_* environment variables taking precedence (for example
// RAAMA_BACKEND_URL). If the file does not exist, defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RAAMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *fs.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Backend.URL = strings.TrimRight(cfg.Backend.URL, "/")
	cfg.Realtime.Transport = strings.ToLower(cfg.Realtime.Transport)

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("realtime", cfg.Realtime)
	v.Set("stream", cfg.Stream)
	v.Set("socket", cfg.Socket)
	v.Set("center", cfg.Center)
	v.Set("toast", cfg.Toast)
	v.Set("alerts", cfg.Alerts)
	v.Set("display", cfg.Display)
	v.Set("storage", cfg.Storage)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
