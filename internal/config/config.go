// Package config loads the TuneStream settings from TOML files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tejashwikalptaru/tunestream/internal/logger"
)

const appName = "tunestream"

// Audio backends.
const (
	BackendBeep = "beep"
	BackendMock = "mock"
)

type Config struct {
	ServerURL   string        `koanf:"server_url"`   // catalog server, without the /api/v1 prefix
	LogLevel    string        `koanf:"log_level"`    // debug, info, warn, error
	LogFormat   string        `koanf:"log_format"`   // "text" or "json"
	HTTPTimeout time.Duration `koanf:"http_timeout"` // per catalog request

	Audio AudioConfig `koanf:"audio"`
	UI    UIConfig    `koanf:"ui"`
}

// AudioConfig selects and tunes the media backend.
type AudioConfig struct {
	Backend       string        `koanf:"backend"`        // "beep" or "mock"
	SampleRate    int           `koanf:"sample_rate"`    // speaker sample rate in Hz
	Buffer        time.Duration `koanf:"buffer"`         // speaker buffer length
	StreamTimeout time.Duration `koanf:"stream_timeout"` // per song download
	MockInterval  time.Duration `koanf:"mock_interval"`  // position tick of the silent backend
}

// UIConfig holds the desktop window settings.
type UIConfig struct {
	WindowWidth  float32 `koanf:"window_width"`
	WindowHeight float32 `koanf:"window_height"`
}

// Default returns the configuration used when no file sets a key.
func Default() *Config {
	return &Config{
		ServerURL:   "http://localhost:8080",
		LogLevel:    "info",
		LogFormat:   "text",
		HTTPTimeout: 30 * time.Second,
		Audio: AudioConfig{
			Backend:       BackendBeep,
			SampleRate:    44100,
			Buffer:        100 * time.Millisecond,
			StreamTimeout: 2 * time.Minute,
			MockInterval:  250 * time.Millisecond,
		},
		UI: UIConfig{
			WindowWidth:  960,
			WindowHeight: 640,
		},
	}
}

// Load reads the config files in order of priority (last wins) on top of
// the defaults. An explicit path must exist; the implicit ones are optional.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if explicit != "" {
		path := expandPath(explicit)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.ServerURL = strings.TrimSuffix(strings.TrimSpace(cfg.ServerURL), "/")
	cfg.Audio.Backend = strings.ToLower(strings.TrimSpace(cfg.Audio.Backend))

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.ServerURL == "" {
		errs = append(errs, errors.New("server_url must not be empty"))
	} else if u, err := url.Parse(c.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("server_url %q is not an absolute URL", c.ServerURL))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q must be text or json", c.LogFormat))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("http_timeout must be positive"))
	}
	switch c.Audio.Backend {
	case BackendBeep, BackendMock:
	default:
		errs = append(errs, fmt.Errorf("audio.backend %q must be beep or mock", c.Audio.Backend))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, errors.New("audio.sample_rate must be positive"))
	}
	if c.Audio.StreamTimeout <= 0 {
		errs = append(errs, errors.New("audio.stream_timeout must be positive"))
	}
	if c.Audio.MockInterval <= 0 {
		errs = append(errs, errors.New("audio.mock_interval must be positive"))
	}

	return errors.Join(errs...)
}

// LoggerConfig maps the logging keys onto a logger configuration.
// Validate must have accepted the config.
func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	if os.Getenv(logger.EnvLevel) == "" {
		if level, err := logger.ParseLevel(c.LogLevel); err == nil {
			cfg.Level = level
		}
	}
	cfg.Format = c.LogFormat
	return cfg
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/tunestream/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),

		// 2. ./config.toml (pwd)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
