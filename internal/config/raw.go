package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/shellwm/internal/geometry"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawSize struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

func (s RawSize) applyTo(dst *geometry.Size) {
	if s.Width != nil {
		dst.Width = *s.Width
	}
	if s.Height != nil {
		dst.Height = *s.Height
	}
}

type RawViewport struct {
	Source      *ViewportSourceKind `yaml:"source"`
	Width       *int                `yaml:"width"`
	Height      *int                `yaml:"height"`
	Display     *string             `yaml:"display"`
	Monitor     *string             `yaml:"monitor"`
	UseWorkArea *bool               `yaml:"use_work_area"`
}

type RawLogging struct {
	Level  *string `yaml:"level"`
	Events *bool   `yaml:"events"`
}

// RawConfig mirrors Config with every field optional so files can be
// layered through include.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	ChromeHeight         *int               `yaml:"chrome_height"`
	DefaultSize          *RawSize           `yaml:"default_size"`
	Components           map[string]RawSize `yaml:"components"`
	Viewport             *RawViewport       `yaml:"viewport"`
	Logging              *RawLogging        `yaml:"logging"`
	AuditIntervalSeconds *int               `yaml:"audit_interval_seconds"`
	WatchConfig          *bool              `yaml:"watch_config"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.ChromeHeight != nil {
		out.ChromeHeight = overlay.ChromeHeight
	}
	if overlay.DefaultSize != nil {
		merged := mergeRawSize(derefSize(out.DefaultSize), *overlay.DefaultSize)
		out.DefaultSize = &merged
	}
	if overlay.Components != nil {
		components := make(map[string]RawSize, len(c.Components)+len(overlay.Components))
		for name, size := range c.Components {
			components[name] = size
		}
		for name, size := range overlay.Components {
			components[name] = mergeRawSize(components[name], size)
		}
		out.Components = components
	}
	if overlay.Viewport != nil {
		merged := mergeRawViewport(derefViewport(out.Viewport), *overlay.Viewport)
		out.Viewport = &merged
	}
	if overlay.Logging != nil {
		merged := RawLogging{}
		if out.Logging != nil {
			merged = *out.Logging
		}
		if overlay.Logging.Level != nil {
			merged.Level = overlay.Logging.Level
		}
		if overlay.Logging.Events != nil {
			merged.Events = overlay.Logging.Events
		}
		out.Logging = &merged
	}
	if overlay.AuditIntervalSeconds != nil {
		out.AuditIntervalSeconds = overlay.AuditIntervalSeconds
	}
	if overlay.WatchConfig != nil {
		out.WatchConfig = overlay.WatchConfig
	}
	return out
}

func derefSize(s *RawSize) RawSize {
	if s == nil {
		return RawSize{}
	}
	return *s
}

func derefViewport(v *RawViewport) RawViewport {
	if v == nil {
		return RawViewport{}
	}
	return *v
}

func mergeRawSize(base RawSize, overlay RawSize) RawSize {
	out := base
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	return out
}

func mergeRawViewport(base RawViewport, overlay RawViewport) RawViewport {
	out := base
	if overlay.Source != nil {
		out.Source = overlay.Source
	}
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.Monitor != nil {
		out.Monitor = overlay.Monitor
	}
	if overlay.UseWorkArea != nil {
		out.UseWorkArea = overlay.UseWorkArea
	}
	return out
}
