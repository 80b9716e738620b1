package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPathEnv overrides the default config file location.
const ConfigPathEnv = "SHELLWM_CONFIG"

// LoadResult is a loaded configuration together with where each value
// came from.
type LoadResult struct {
	Config *Config
	// Sources maps a dotted YAML path to the file position that last set it.
	Sources map[string]Source
	// Files lists every file read, includes first, in merge order.
	Files []string
}

// DefaultConfigPath returns $SHELLWM_CONFIG, or ~/.config/shellwm/config.yaml.
func DefaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnv)); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "shellwm", "config.yaml"), nil
}

// Load reads the configuration from the default location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load, keeping source positions for explain and
// validation messages.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and any files it includes. A missing file yields
// the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &fileLoader{
		visited: make(map[string]bool),
		sources: make(map[string]Source),
	}

	var raw RawConfig
	if _, err := os.Stat(path); err == nil {
		if raw, err = l.load(path, nil); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, withSource(err, l.sources)
	}
	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// fileLoader merges a file tree. Includes are applied before the file that
// names them, so the including file wins.
type fileLoader struct {
	visited map[string]bool
	sources map[string]Source
	files   []string
}

func (l *fileLoader) load(path string, chain []string) (RawConfig, error) {
	file := resolveLinks(path)
	if slices.Contains(chain, file) {
		return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(chain, " -> "), file)
	}
	// A file reachable through two includes is merged once.
	if l.visited[file] {
		return RawConfig{}, nil
	}
	l.visited[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var own RawConfig
	if err := decodeKnownFields(data, &own); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", file, err)
	}

	var merged RawConfig
	for _, ref := range includeRefs(&doc, file) {
		targets, err := includeTargets(file, ref.value)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s: include %q: %w", ref.src.position(), ref.value, err)
		}
		for _, target := range targets {
			inc, err := l.load(target, append(chain, file))
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(inc)
		}
	}

	for p, src := range nodeSources(&doc, file) {
		l.sources[p] = src
	}
	l.files = append(l.files, file)
	return merged.merge(own), nil
}

func decodeKnownFields(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// resolveLinks returns the absolute, symlink-free form of path, or the
// absolute form when links cannot be resolved.
func resolveLinks(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// includeTargets expands one include entry relative to the including file.
// A directory contributes its *.yaml and *.yml files in name order.
func includeTargets(from, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	path, err := expandHome(include)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from), path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				out = append(out, filepath.Join(path, ent.Name()))
			}
		}
	}
	// ReadDir already sorts by name.
	return out, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
