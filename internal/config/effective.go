package config

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func errf(format string, args ...any) error {
	if len(args) == 0 {
		return errors.New(format)
	}
	return fmt.Errorf(format, args...)
}

// BuildEffectiveConfig applies raw on top of the defaults. Component
// entries merge field by field over the builtin table, so overriding only
// a width keeps the builtin height.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.ChromeHeight != nil {
		cfg.ChromeHeight = *raw.ChromeHeight
	}
	if raw.DefaultSize != nil {
		raw.DefaultSize.applyTo(&cfg.DefaultSize)
	}
	for name, size := range raw.Components {
		base, ok := cfg.Components[name]
		if !ok {
			base = cfg.DefaultSize
		}
		size.applyTo(&base)
		cfg.Components[name] = base
	}

	if v := raw.Viewport; v != nil {
		if v.Source != nil {
			cfg.Viewport.Source = *v.Source
		}
		if v.Width != nil {
			cfg.Viewport.Width = *v.Width
		}
		if v.Height != nil {
			cfg.Viewport.Height = *v.Height
		}
		if v.Display != nil {
			cfg.Viewport.Display = *v.Display
		}
		if v.Monitor != nil {
			cfg.Viewport.Monitor = *v.Monitor
		}
		if v.UseWorkArea != nil {
			cfg.Viewport.UseWorkArea = *v.UseWorkArea
		}
	}

	if l := raw.Logging; l != nil {
		if l.Level != nil {
			cfg.Logging.Level = *l.Level
		}
		if l.Events != nil {
			cfg.Logging.Events = *l.Events
		}
	}

	if raw.AuditIntervalSeconds != nil {
		cfg.AuditIntervalSeconds = *raw.AuditIntervalSeconds
	}
	if raw.WatchConfig != nil {
		v := *raw.WatchConfig
		cfg.WatchConfig = &v
	}

	return cfg, nil
}
