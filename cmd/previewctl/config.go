package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cursorkit/preview"
	"github.com/cursorkit/preview/render"
)

// Config holds previewctl settings.
type Config struct {
	StaticCapacity   int  `yaml:"static_capacity"`
	AnimatedCapacity int  `yaml:"animated_capacity"`
	PreloadWorkers   int  `yaml:"preload_workers"`
	ThumbnailEdge    int  `yaml:"thumbnail_edge"`
	CompressAnimated bool `yaml:"compress_animated"`
}

// DefaultConfig returns a Config with the library defaults.
func DefaultConfig() Config {
	return Config{
		StaticCapacity:   preview.DefaultStaticCapacity,
		AnimatedCapacity: preview.DefaultAnimatedCapacity,
		PreloadWorkers:   preview.DefaultPreloadConcurrency,
		ThumbnailEdge:    render.DefaultThumbnailEdge,
	}
}

// LoadConfig reads a YAML config file at path. An empty or missing
// path returns defaults without error; invalid YAML or unknown fields
// are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
