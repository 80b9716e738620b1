package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/shellwm/internal/geometry"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	chrome_height
//	default_size.width
//	components
//	components.<name>.height
//	viewport.source
//	viewport.monitor
//	logging.level
//	audit_interval_seconds
//	watch_config
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	// Component sizes that no file touched come from the builtin table.
	if name := componentNameFromPath(path); name != "" {
		if _, ok := geometry.BuiltinComponentSizes()[name]; ok {
			return value, Source{Kind: SourceBuiltin, Name: name}, nil
		}
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func componentNameFromPath(path string) string {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || parts[0] != "components" {
		return ""
	}
	return parts[1]
}

func unknownPath(path string) error {
	return fmt.Errorf("unknown path: %s", path)
}

func lookupSize(size geometry.Size, field, path string) (any, error) {
	switch field {
	case "width":
		return size.Width, nil
	case "height":
		return size.Height, nil
	default:
		return nil, unknownPath(path)
	}
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	leaf := len(parts) == 1
	switch parts[0] {
	case "chrome_height":
		if !leaf {
			return nil, unknownPath(path)
		}
		return cfg.ChromeHeight, nil
	case "default_size":
		switch len(parts) {
		case 1:
			return cfg.DefaultSize, nil
		case 2:
			return lookupSize(cfg.DefaultSize, parts[1], path)
		}
		return nil, unknownPath(path)
	case "components":
		if leaf {
			return cfg.Components, nil
		}
		size, ok := cfg.Components[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown component %q", parts[1])
		}
		switch len(parts) {
		case 2:
			return size, nil
		case 3:
			return lookupSize(size, parts[2], path)
		}
		return nil, unknownPath(path)
	case "viewport":
		if leaf {
			return cfg.Viewport, nil
		}
		if len(parts) != 2 {
			return nil, unknownPath(path)
		}
		switch parts[1] {
		case "source":
			return cfg.Viewport.Source, nil
		case "width":
			return cfg.Viewport.Width, nil
		case "height":
			return cfg.Viewport.Height, nil
		case "display":
			return cfg.Viewport.Display, nil
		case "monitor":
			return cfg.Viewport.Monitor, nil
		case "use_work_area":
			return cfg.Viewport.UseWorkArea, nil
		}
		return nil, unknownPath(path)
	case "logging":
		if leaf {
			return cfg.Logging, nil
		}
		if len(parts) != 2 {
			return nil, unknownPath(path)
		}
		switch parts[1] {
		case "level":
			return cfg.Logging.Level, nil
		case "events":
			return cfg.Logging.Events, nil
		}
		return nil, unknownPath(path)
	case "audit_interval_seconds":
		if !leaf {
			return nil, unknownPath(path)
		}
		return cfg.AuditIntervalSeconds, nil
	case "watch_config":
		if !leaf {
			return nil, unknownPath(path)
		}
		return cfg.GetWatchConfig(), nil
	default:
		return nil, unknownPath(path)
	}
}
