package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the choromap application file.
type File struct {
	Log      LogConfig      `yaml:"log"`
	Topology string         `yaml:"topology"`
	Data     string         `yaml:"data"`
	Map      Options        `yaml:"map"`
	Overlays OverlaysConfig `yaml:"overlays"`
	Server   ServerConfig   `yaml:"server"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// OverlaysConfig names the plugin layers drawn after the subunits.
type OverlaysConfig struct {
	Bubbles   string `yaml:"bubbles"`
	Arcs      string `yaml:"arcs"`
	Labels    bool   `yaml:"labels"`
	Legend    bool   `yaml:"legend"`
	Graticule bool   `yaml:"graticule"`
}

type ServerConfig struct {
	Listen       string            `yaml:"listen"`
	Topologies   map[string]string `yaml:"topologies"`
	CacheTTL     Duration          `yaml:"cacheTTL"`
	CacheEntries int               `yaml:"cacheEntries"`
	RateLimit    int               `yaml:"rateLimit"`
	MaxBodyBytes int64             `yaml:"maxBodyBytes"`
	Watch        *bool             `yaml:"watch"`
}

// DefaultFile returns the application defaults.
func DefaultFile() File {
	return File{
		Log: LogConfig{Level: "info"},
		Map: DefaultOptions(),
		Server: ServerConfig{
			Listen:       ":8080",
			Topologies:   map[string]string{},
			CacheTTL:     Duration(5 * time.Minute),
			CacheEntries: 512,
			RateLimit:    120,
			MaxBodyBytes: 1 << 20,
			Watch:        Bool(true),
		},
	}
}

// Load reads path with strict YAML parsing, fills defaults, applies
// environment overrides and validates the result.
func Load(path string) (*File, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	Merge(f, DefaultFile())
	ApplyEnv(f, os.Getenv)
	if err := Validate(f); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return f, nil
}

// LoadFile reads a YAML config file without applying defaults or env overrides.
// Unknown fields are rejected.
func LoadFile(path string) (*File, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document strictly.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &File{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}
	return &f, nil
}

// ApplyEnv overlays the supported environment variables.
func ApplyEnv(f *File, getenv func(string) string) {
	if v := getenv("CHOROMAP_LOG_LEVEL"); v != "" {
		f.Log.Level = v
	}
	if v := getenv("CHOROMAP_LISTEN"); v != "" {
		f.Server.Listen = v
	}
	if v := getenv("CHOROMAP_TOPOLOGY"); v != "" {
		f.Topology = v
	}
}
