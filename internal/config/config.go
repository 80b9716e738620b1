package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/shellwm/internal/geometry"
)

// ViewportSourceKind selects where the engine reads viewport dimensions.
type ViewportSourceKind string

const (
	ViewportStatic ViewportSourceKind = "static" // Fixed width/height from config.
	ViewportX11    ViewportSourceKind = "x11"    // Live monitor geometry from the X server.
)

// ViewportConfig configures the viewport source.
type ViewportConfig struct {
	Source ViewportSourceKind `yaml:"source"`
	// Width and Height are the static size. With the x11 source they are
	// used as a fallback when the X server can't be queried (0 = none).
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Display overrides $DISPLAY for the x11 source.
	Display string `yaml:"display,omitempty"`
	// Monitor pins the x11 source to a RandR output name (e.g. "DP-1").
	Monitor string `yaml:"monitor,omitempty"`
	// UseWorkArea clips the monitor to the EWMH work area.
	UseWorkArea bool `yaml:"use_work_area,omitempty"`
}

// LoggingConfig configures daemon logging.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// Events logs every engine state change at info level.
	Events bool `yaml:"events,omitempty"`
}

const (
	DefaultViewportWidth        = 1920
	DefaultViewportHeight       = 1080
	DefaultAuditIntervalSeconds = 10
)

// Config is the effective shellwm configuration.
type Config struct {
	ChromeHeight         int                      `yaml:"chrome_height"`
	DefaultSize          geometry.Size            `yaml:"default_size"`
	Components           map[string]geometry.Size `yaml:"components"`
	Viewport             ViewportConfig           `yaml:"viewport"`
	Logging              LoggingConfig            `yaml:"logging"`
	AuditIntervalSeconds int                      `yaml:"audit_interval_seconds"`
	// WatchConfig reloads the daemon when the config file changes.
	// Default: true
	WatchConfig *bool `yaml:"watch_config,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		ChromeHeight: geometry.DefaultChromeHeight,
		DefaultSize:  geometry.FallbackSize,
		Components:   geometry.BuiltinComponentSizes(),
		Viewport: ViewportConfig{
			Source: ViewportStatic,
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		AuditIntervalSeconds: DefaultAuditIntervalSeconds,
	}
}

// Policy returns the geometry policy described by the config.
func (c *Config) Policy() geometry.Policy {
	components := make(map[string]geometry.Size, len(c.Components))
	for name, size := range c.Components {
		components[name] = size
	}
	return geometry.Policy{
		Components:   components,
		Fallback:     c.DefaultSize,
		ChromeHeight: c.ChromeHeight,
	}
}

// AuditInterval returns how often the daemon checks engine invariants.
// Zero disables auditing.
func (c *Config) AuditInterval() time.Duration {
	if c.AuditIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.AuditIntervalSeconds) * time.Second
}

// GetWatchConfig returns the effective value, defaulting to true
func (c *Config) GetWatchConfig() bool {
	if c == nil || c.WatchConfig == nil {
		return true
	}
	return *c.WatchConfig
}

// SlogLevel maps logging.level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) Validate() error {
	if c.ChromeHeight < 0 {
		return &ValidationError{Path: "chrome_height", Err: errf("chrome_height must be >= 0")}
	}
	if c.DefaultSize.Width <= 0 || c.DefaultSize.Height <= 0 {
		return &ValidationError{Path: "default_size", Err: errf("default_size width and height must be > 0")}
	}
	for name, size := range c.Components {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "components", Err: errf("components contains an empty component name")}
		}
		if size.Width <= 0 || size.Height <= 0 {
			return &ValidationError{Path: "components." + name, Err: errf("width and height must be > 0")}
		}
	}

	switch c.Viewport.Source {
	case ViewportStatic:
		if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
			return &ValidationError{Path: "viewport", Err: errf("static viewport requires width and height > 0")}
		}
		if c.ChromeHeight >= c.Viewport.Height {
			return &ValidationError{Path: "chrome_height", Err: errf("chrome_height %d leaves no room in a %dpx viewport", c.ChromeHeight, c.Viewport.Height)}
		}
	case ViewportX11:
		if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
			return &ValidationError{Path: "viewport", Err: errf("viewport fallback width and height must be >= 0")}
		}
	default:
		return &ValidationError{Path: "viewport.source", Err: errf("viewport.source must be one of: static, x11")}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: errf("logging.level must be one of: debug, info, warn, error")}
	}
	if c.AuditIntervalSeconds < 0 {
		return &ValidationError{Path: "audit_interval_seconds", Err: errf("audit_interval_seconds must be >= 0")}
	}
	return nil
}
